// Command seed loads a YAML fixture of museums and passages into SQLite and
// the vector store, replacing each museum's previously indexed passages.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"museum-guide/internal/config"
	"museum-guide/internal/indexer"
	"museum-guide/internal/llm"
	"museum-guide/internal/storage"
	"museum-guide/internal/vectorstore"
)

func main() {
	file := flag.String("file", "museums.yaml", "path to the YAML fixture")
	jsonReport := flag.Bool("json", false, "print the run report as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if cfg.EmbeddingAPIKey == "" {
		log.Fatalf("EMBEDDING_API_KEY (or LLM_API_KEY) is required for seeding")
	}

	fixture, err := indexer.LoadFixture(*file)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	vectorStore, closeStore, err := vectorstore.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer closeStore()

	pipeline := indexer.NewPipeline(
		storage.NewMuseumRepo(db),
		storage.NewPassageRepo(db),
		llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.VectorSize),
		vectorStore,
		cfg.VectorCollection,
		cfg.VectorSize,
	)

	report, runErr := pipeline.IndexAll(ctx, fixture)

	if *jsonReport {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	}

	if runErr != nil {
		slog.Error("Seeding finished with errors", "error", runErr)
		os.Exit(1)
	}
}
