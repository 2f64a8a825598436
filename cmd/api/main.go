package main

import (
	"log"

	"dot-triage/internal/shared/config"
	"dot-triage/internal/shared/server"
)

func main() {
	cfg := config.Load()
	r, err := server.NewRouter(cfg)
	if err != nil {
		log.Fatalf("startup error: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting triage server on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
