package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Supported vector store backends.
const (
	BackendQdrant   = "qdrant"
	BackendPgVector = "pgvector"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	LogLevel  slog.Level
	LogFormat string
	DBPath    string

	LLMProvider      string
	LLMBaseURL       string
	LLMModelName     string
	LLMAPIKey        string
	AnthropicBaseURL string

	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string

	VectorBackend    string
	QdrantURL        string
	QdrantAPIKey     string
	VectorCollection string
	PgVectorDSN      string
	VectorSize       int

	// Retrieval tuning. The fetch constants are kept configurable; their
	// values come from production behaviour rather than a derivation.
	MinSimilarity         float64
	RetrievalMinFetch     int
	RetrievalFetchPadding int
	RetrievalMaxFetch     int
	DefaultMatchCount     int
	MaxMatchCount         int

	UpstreamTimeout time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	llmBaseURL := getEnv("LLM_BASE_URL", "https://api.openai.com")
	llmAPIKey := getEnv("LLM_API_KEY", "")

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DBPath:             getEnv("DB_PATH", "./data/museum-guide.db"),
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		LLMBaseURL:         llmBaseURL,
		LLMModelName:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:          llmAPIKey,
		AnthropicBaseURL:   getEnv("ANTHROPIC_BASE_URL", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", llmBaseURL),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", llmAPIKey),
		VectorBackend:      strings.ToLower(getEnv("VECTOR_BACKEND", BackendQdrant)),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:       getEnv("QDRANT_API_KEY", ""),
		VectorCollection:   getEnv("VECTOR_COLLECTION", "passages"),
		PgVectorDSN:        getEnv("PGVECTOR_DSN", ""),
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// VECTOR_SIZE must match the output size of the embedding model; changing it
	// means the collection has to be recreated.
	if cfg.VectorSize, err = getPositiveInt("VECTOR_SIZE", 1536); err != nil {
		return nil, err
	}
	if cfg.RetrievalMinFetch, err = getPositiveInt("RETRIEVAL_MIN_FETCH", 5); err != nil {
		return nil, err
	}
	if cfg.RetrievalFetchPadding, err = getNonNegativeInt("RETRIEVAL_FETCH_PADDING", 5); err != nil {
		return nil, err
	}
	if cfg.RetrievalMaxFetch, err = getPositiveInt("RETRIEVAL_MAX_FETCH", 10); err != nil {
		return nil, err
	}
	if cfg.DefaultMatchCount, err = getPositiveInt("DEFAULT_MATCH_COUNT", 5); err != nil {
		return nil, err
	}
	if cfg.MaxMatchCount, err = getPositiveInt("MAX_MATCH_COUNT", 10); err != nil {
		return nil, err
	}

	minSim, err := strconv.ParseFloat(getEnv("MIN_SIMILARITY", "0.45"), 64)
	if err != nil {
		return nil, fmt.Errorf("MIN_SIMILARITY must be a valid number: %w", err)
	}
	if minSim < 0 || minSim > 1 {
		return nil, fmt.Errorf("MIN_SIMILARITY must be between 0 and 1")
	}
	cfg.MinSimilarity = minSim

	if cfg.UpstreamTimeout, err = getDuration("UPSTREAM_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.LLMProvider)
	}

	switch c.VectorBackend {
	case BackendQdrant:
	case BackendPgVector:
		if c.PgVectorDSN == "" {
			return fmt.Errorf("PGVECTOR_DSN is required when VECTOR_BACKEND=%s", BackendPgVector)
		}
	default:
		return fmt.Errorf("VECTOR_BACKEND must be %q or %q, got %q", BackendQdrant, BackendPgVector, c.VectorBackend)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.RetrievalMinFetch > c.RetrievalMaxFetch {
		return fmt.Errorf("RETRIEVAL_MIN_FETCH (%d) must not exceed RETRIEVAL_MAX_FETCH (%d)", c.RetrievalMinFetch, c.RetrievalMaxFetch)
	}
	if c.DefaultMatchCount > c.MaxMatchCount {
		return fmt.Errorf("DEFAULT_MATCH_COUNT (%d) must not exceed MAX_MATCH_COUNT (%d)", c.DefaultMatchCount, c.MaxMatchCount)
	}
	return nil
}

// MissingCredentials lists the credential variables that are not set.
// The server still starts without them; queries are rejected instead.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.LLMAPIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if c.EmbeddingAPIKey == "" {
		missing = append(missing, "EMBEDDING_API_KEY")
	}
	return missing
}

// loadDotEnv loads the nearest .env file, searching the working directory and
// a few parents. Missing files are ignored.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	v, err := getInt(key, defaultValue)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return v, nil
}

func getNonNegativeInt(key string, defaultValue int) (int, error) {
	v, err := getInt(key, defaultValue)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return v, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return d, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	return level, nil
}
