package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port              string
	Env               string
	CORSAllowOrigin   []string
	StoreBackend      string
	SQLitePath        string
	ChromaURL         string
	ChromaCollection  string
	DatabaseURL       string
	ArchiveDir        string
	AnthropicAPIKey   string
	LLMModel          string
	LLMMaxTokens      int
	LLMTimeoutSeconds int
	OCRLanguages      []string
	AskRatePerSec     float64
	AskBurst          int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	return Config{
		Port:              getEnv("PORT", "8080"),
		Env:               normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		StoreBackend:      normalizeBackend(getEnv("STORE_BACKEND", "sqlite")),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/documents.db"),
		ChromaURL:         strings.TrimRight(getEnv("CHROMA_URL", "http://localhost:8000"), "/"),
		ChromaCollection:  getEnv("CHROMA_COLLECTION", "documents"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ArchiveDir:        getEnv("ARCHIVE_DIR", ""),
		AnthropicAPIKey:   os.Getenv("CLAUDE_API_KEY"),
		LLMModel:          getEnv("LLM_MODEL", "claude-sonnet-4-20250514"),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 1000),
		LLMTimeoutSeconds: getEnvInt("ANTHROPIC_TIMEOUT_SECONDS", 120),
		OCRLanguages:      splitAndTrim(getEnv("OCR_LANGUAGES", "eng")),
		AskRatePerSec:     getEnvFloat("ASK_RATE_PER_SEC", 1),
		AskBurst:          getEnvInt("ASK_BURST", 5),
	}
}

// ValidateAPIKey checks the completion-service credential is present and
// structurally valid. Startup must refuse to serve otherwise.
func ValidateAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("CLAUDE_API_KEY environment variable is required")
	}
	if !strings.HasPrefix(key, "sk-") {
		return fmt.Errorf("invalid CLAUDE_API_KEY format - should start with 'sk-'")
	}
	return nil
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
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val <= 0 {
		return def
	}
	return val
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

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "memory":
		return "memory"
	case "chroma":
		return "chroma"
	case "postgres", "pg":
		return "postgres"
	default:
		return "sqlite"
	}
}
