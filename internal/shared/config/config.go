package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicTimeout int // seconds
	LLMMaxTokens     int
	LLMTemperature   float64
	PromptPath       string

	AirtableAPIKey       string
	AirtableBaseID       string
	AirtableClientsTable string
	AirtableTimeout      int // seconds

	HeaderAssetURL string
	ReservedCodes  []string
	RenderLocally  bool

	TriageRatePerSecond float64
	TriageBurst         int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "")),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		AnthropicTimeout: getEnvInt("ANTHROPIC_TIMEOUT_SECONDS", 60),
		LLMMaxTokens:     getEnvInt("LLM_MAX_TOKENS", 2000),
		LLMTemperature:   getEnvFloat("LLM_TEMPERATURE", 0.2),
		PromptPath:       os.Getenv("TRIAGE_PROMPT_PATH"),

		AirtableAPIKey:       os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:       getEnv("AIRTABLE_BASE_ID", ""),
		AirtableClientsTable: getEnv("AIRTABLE_CLIENTS_TABLE", "Clients"),
		AirtableTimeout:      getEnvInt("AIRTABLE_TIMEOUT_SECONDS", 10),

		HeaderAssetURL: getEnv("HEADER_ASSET_URL", "https://mghunch.github.io/hunch-assets/Header_Triage.png"),
		ReservedCodes:  splitAndTrim(getEnv("RESERVED_CLIENT_CODES", "HUN,TBC")),
		RenderLocally:  getEnvBool("RENDER_LOCALLY", true),

		TriageRatePerSecond: getEnvFloat("TRIAGE_RATE_PER_SECOND", 0),
		TriageBurst:         getEnvInt("TRIAGE_BURST", 0),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
