package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"museum-guide/internal/config"
	"museum-guide/internal/http"
	"museum-guide/internal/llm"
	"museum-guide/internal/rag"
	"museum-guide/internal/storage"
	"museum-guide/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers visitor questions about museums from their structured facts and indexed content.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Museum Guide API
//   description: |
//     Grounded question answering for museums. Answers come from a museum's fact record
//     or from its indexed passages, and are refused when neither supports the question.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	museumRepo := storage.NewMuseumRepo(db)
	passageRepo := storage.NewPassageRepo(db)

	ctx := context.Background()

	vectorStore, closeStore, err := vectorstore.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer closeStore()
	slog.Info("Vector store ready", "backend", cfg.VectorBackend, "collection", cfg.VectorCollection)

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	chatModel := newChatModel(cfg)

	missing := cfg.MissingCredentials()
	if len(missing) > 0 {
		slog.Warn("Credentials missing, questions will be rejected until configured", "missing", missing)
	}

	opts := rag.DefaultOptions()
	opts.MinSimilarity = cfg.MinSimilarity
	opts.Fetch = rag.FetchPolicy{
		Min:     cfg.RetrievalMinFetch,
		Padding: cfg.RetrievalFetchPadding,
		Max:     cfg.RetrievalMaxFetch,
	}
	opts.DefaultMatchCount = cfg.DefaultMatchCount
	opts.MaxMatchCount = cfg.MaxMatchCount
	opts.UpstreamTimeout = cfg.UpstreamTimeout
	opts.MissingCredentials = missing
	opts.Chat.Model = cfg.LLMModelName

	engine := rag.NewEngine(
		embedder,
		chatModel,
		vectorStore,
		cfg.VectorCollection,
		museumRepo,
		passageRepo,
		opts,
	)
	slog.Info("RAG engine initialized", "provider", cfg.LLMProvider, "model", cfg.LLMModelName)

	router := http.NewRouter(&http.Deps{
		Engine:      engine,
		FactStore:   db,
		VectorStore: vectorStore,
		Collection:  cfg.VectorCollection,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3*cfg.UpstreamTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}

// setupLogging installs the default slog logger from LOG_LEVEL and LOG_FORMAT.
func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
}

func newChatModel(cfg *config.Config) rag.ChatModel {
	if cfg.LLMProvider == config.ProviderAnthropic {
		return llm.NewAnthropicClient(cfg.AnthropicBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	}
	return llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
}
