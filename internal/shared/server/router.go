package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dot-triage/internal/ledger"
	"dot-triage/internal/ledger/airtable"
	"dot-triage/internal/llm"
	anthropicllm "dot-triage/internal/llm/anthropic"
	"dot-triage/internal/report"
	"dot-triage/internal/services/health"
	"dot-triage/internal/shared/config"
	"dot-triage/internal/shared/metrics"
	"dot-triage/internal/shared/server/middleware"
	"dot-triage/internal/shared/server/respond"
	"dot-triage/internal/shared/telemetry"
	"dot-triage/internal/triage"
)

const (
	serviceName    = "Dot Triage"
	serviceVersion = "2.1"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
// It fails only on startup-fatal problems: an invalid LLM configuration or an
// unreadable prompt override. Missing credentials degrade instead, the same
// way for both outbound dependencies.
func NewRouter(cfg config.Config) (*gin.Engine, error) {
	if cfg.Env == "dev" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	prompt, err := llm.TriagePrompt(cfg.PromptPath)
	if err != nil {
		return nil, err
	}

	// A missing Anthropic key keeps the service up; triage requests fail per
	// call until the key is configured.
	llmClient := llm.Client(llm.PlaceholderClient{})
	if cfg.AnthropicAPIKey != "" {
		anthropicClient, err := anthropicllm.NewClient(anthropicllm.Config{
			APIKey:      cfg.AnthropicAPIKey,
			Model:       cfg.AnthropicModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     time.Duration(cfg.AnthropicTimeout) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		llmClient = anthropicClient
	} else {
		telemetry.Warn("llm.unavailable", map[string]any{
			"reason": "ANTHROPIC_API_KEY not set",
		})
	}

	// A missing Airtable key downgrades every reservation to the TBC path
	// instead of failing startup.
	var store ledger.ClientStore
	if cfg.AirtableAPIKey != "" {
		airtableClient, err := airtable.New(airtable.Config{
			APIKey:  cfg.AirtableAPIKey,
			BaseID:  cfg.AirtableBaseID,
			Table:   cfg.AirtableClientsTable,
			Timeout: time.Duration(cfg.AirtableTimeout) * time.Second,
		})
		if err != nil {
			log.Printf("airtable disabled: %v", err)
		} else {
			store = airtableClient
		}
	}

	triageSvc := &triage.Service{
		LLM:           llmClient,
		Ledger:        ledger.NewService(store, cfg.ReservedCodes),
		Renderer:      report.NewRenderer(cfg.HeaderAssetURL),
		Prompt:        prompt,
		RenderLocally: cfg.RenderLocally,
	}
	triageHandler := triage.NewHandler(triageSvc)

	healthSvc := health.NewService(serviceName, serviceVersion)
	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	r.GET("/metrics", metrics.Handler())

	routes := gin.IRoutes(r)
	if cfg.TriageRatePerSecond > 0 && cfg.TriageBurst > 0 {
		routes = r.Group("", middleware.RateLimit(middleware.RateLimitRule{
			Rate:  cfg.TriageRatePerSecond,
			Burst: cfg.TriageBurst,
		}, nil))
	}
	triageHandler.RegisterRoutes(routes)

	return r, nil
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
