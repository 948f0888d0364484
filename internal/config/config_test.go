package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var envVars = []string{
	"API_PORT", "LOG_LEVEL", "LOG_FORMAT", "DB_PATH",
	"LLM_PROVIDER", "LLM_BASE_URL", "LLM_MODEL", "LLM_API_KEY", "ANTHROPIC_BASE_URL",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_API_KEY",
	"VECTOR_BACKEND", "QDRANT_URL", "QDRANT_API_KEY", "VECTOR_COLLECTION", "PGVECTOR_DSN", "VECTOR_SIZE",
	"MIN_SIMILARITY", "RETRIEVAL_MIN_FETCH", "RETRIEVAL_FETCH_PADDING", "RETRIEVAL_MAX_FETCH",
	"DEFAULT_MATCH_COUNT", "MAX_MATCH_COUNT", "UPSTREAM_TIMEOUT", "SHUTDOWN_TIMEOUT",
}

// isolateEnv clears every config variable for the duration of the test and
// moves into a directory without a .env file.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			setupEnv: func(t *testing.T) {
				t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "db.db"))
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.APIPort != "9000" {
					t.Errorf("APIPort = %q, want 9000", cfg.APIPort)
				}
				if cfg.LLMProvider != ProviderOpenAI {
					t.Errorf("LLMProvider = %q, want %q", cfg.LLMProvider, ProviderOpenAI)
				}
				if cfg.VectorBackend != BackendQdrant {
					t.Errorf("VectorBackend = %q, want %q", cfg.VectorBackend, BackendQdrant)
				}
				if cfg.VectorCollection != "passages" {
					t.Errorf("VectorCollection = %q, want passages", cfg.VectorCollection)
				}
				if cfg.VectorSize != 1536 {
					t.Errorf("VectorSize = %d, want 1536", cfg.VectorSize)
				}
				if cfg.MinSimilarity != 0.45 {
					t.Errorf("MinSimilarity = %v, want 0.45", cfg.MinSimilarity)
				}
				if cfg.RetrievalMinFetch != 5 || cfg.RetrievalFetchPadding != 5 || cfg.RetrievalMaxFetch != 10 {
					t.Errorf("retrieval fetch = %d/%d/%d, want 5/5/10",
						cfg.RetrievalMinFetch, cfg.RetrievalFetchPadding, cfg.RetrievalMaxFetch)
				}
				if cfg.DefaultMatchCount != 5 || cfg.MaxMatchCount != 10 {
					t.Errorf("match count = %d/%d, want 5/10", cfg.DefaultMatchCount, cfg.MaxMatchCount)
				}
				if cfg.UpstreamTimeout != 20*time.Second {
					t.Errorf("UpstreamTimeout = %v, want 20s", cfg.UpstreamTimeout)
				}
				if cfg.LogLevel != slog.LevelInfo {
					t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
				}
			},
		},
		{
			name: "embedding inherits LLM endpoint and key",
			setupEnv: func(t *testing.T) {
				t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "db.db"))
				t.Setenv("LLM_BASE_URL", "http://llm:8080")
				t.Setenv("LLM_API_KEY", "secret")
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.EmbeddingBaseURL != "http://llm:8080" {
					t.Errorf("EmbeddingBaseURL = %q, want http://llm:8080", cfg.EmbeddingBaseURL)
				}
				if cfg.EmbeddingAPIKey != "secret" {
					t.Errorf("EmbeddingAPIKey = %q, want secret", cfg.EmbeddingAPIKey)
				}
			},
		},
		{
			name: "custom retrieval tuning",
			setupEnv: func(t *testing.T) {
				t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "db.db"))
				t.Setenv("MIN_SIMILARITY", "0.6")
				t.Setenv("RETRIEVAL_MIN_FETCH", "3")
				t.Setenv("RETRIEVAL_FETCH_PADDING", "0")
				t.Setenv("RETRIEVAL_MAX_FETCH", "20")
				t.Setenv("UPSTREAM_TIMEOUT", "5s")
				t.Setenv("LOG_LEVEL", "debug")
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.MinSimilarity != 0.6 {
					t.Errorf("MinSimilarity = %v, want 0.6", cfg.MinSimilarity)
				}
				if cfg.RetrievalMinFetch != 3 || cfg.RetrievalFetchPadding != 0 || cfg.RetrievalMaxFetch != 20 {
					t.Errorf("retrieval fetch = %d/%d/%d, want 3/0/20",
						cfg.RetrievalMinFetch, cfg.RetrievalFetchPadding, cfg.RetrievalMaxFetch)
				}
				if cfg.UpstreamTimeout != 5*time.Second {
					t.Errorf("UpstreamTimeout = %v, want 5s", cfg.UpstreamTimeout)
				}
				if cfg.LogLevel != slog.LevelDebug {
					t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
				}
			},
		},
		{
			name: "pgvector without DSN",
			setupEnv: func(t *testing.T) {
				t.Setenv("VECTOR_BACKEND", "pgvector")
			},
			wantErr: true,
		},
		{
			name: "pgvector with DSN",
			setupEnv: func(t *testing.T) {
				t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "db.db"))
				t.Setenv("VECTOR_BACKEND", "pgvector")
				t.Setenv("PGVECTOR_DSN", "postgres://localhost/museums")
				t.Setenv("VECTOR_COLLECTION", "museum_passages")
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.PgVectorDSN != "postgres://localhost/museums" {
					t.Errorf("PgVectorDSN = %q", cfg.PgVectorDSN)
				}
				if cfg.VectorCollection != "museum_passages" {
					t.Errorf("VectorCollection = %q, want museum_passages", cfg.VectorCollection)
				}
			},
		},
		{
			name: "unknown provider",
			setupEnv: func(t *testing.T) {
				t.Setenv("LLM_PROVIDER", "mystery")
			},
			wantErr: true,
		},
		{
			name: "unknown vector backend",
			setupEnv: func(t *testing.T) {
				t.Setenv("VECTOR_BACKEND", "milvus")
			},
			wantErr: true,
		},
		{
			name: "invalid VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				t.Setenv("VECTOR_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "zero VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				t.Setenv("VECTOR_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "MIN_SIMILARITY out of range",
			setupEnv: func(t *testing.T) {
				t.Setenv("MIN_SIMILARITY", "1.5")
			},
			wantErr: true,
		},
		{
			name: "min fetch above max fetch",
			setupEnv: func(t *testing.T) {
				t.Setenv("RETRIEVAL_MIN_FETCH", "12")
			},
			wantErr: true,
		},
		{
			name: "default match count above max",
			setupEnv: func(t *testing.T) {
				t.Setenv("DEFAULT_MATCH_COUNT", "11")
			},
			wantErr: true,
		},
		{
			name: "invalid UPSTREAM_TIMEOUT",
			setupEnv: func(t *testing.T) {
				t.Setenv("UPSTREAM_TIMEOUT", "soon")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_LEVEL",
			setupEnv: func(t *testing.T) {
				t.Setenv("LOG_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_FORMAT",
			setupEnv: func(t *testing.T) {
				t.Setenv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			tt.setupEnv(t)

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "nested", "db.db")
	t.Setenv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db.db")
	content := "LLM_MODEL=from-dotenv\nDB_PATH=" + dbPath + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Chdir(dir)
	// Empty values set by isolateEnv would block godotenv from overriding.
	_ = os.Unsetenv("LLM_MODEL")
	_ = os.Unsetenv("DB_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLMModelName != "from-dotenv" {
		t.Errorf("LLMModelName = %q, want from-dotenv", cfg.LLMModelName)
	}
}

func TestConfig_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "all present",
			cfg:  Config{LLMAPIKey: "a", EmbeddingAPIKey: "b"},
			want: nil,
		},
		{
			name: "none present",
			cfg:  Config{},
			want: []string{"LLM_API_KEY", "EMBEDDING_API_KEY"},
		},
		{
			name: "embedding key missing",
			cfg:  Config{LLMAPIKey: "a"},
			want: []string{"EMBEDDING_API_KEY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.MissingCredentials(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingCredentials() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         string
	}{
		{name: "env var set", value: "set-value", defaultValue: "default", want: "set-value"},
		{name: "empty env var uses default", value: "", defaultValue: "default", want: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_VAR", tt.value)
			if got := getEnv("TEST_ENV_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}
