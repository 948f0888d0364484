package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks museum-guide/internal/indexer Embedder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"museum-guide/internal/contextutil"
	"museum-guide/internal/storage"
	"museum-guide/internal/vectorstore"
)

// DefaultBatchSize is the number of passages sent per embeddings request.
const DefaultBatchSize = 64

// Embedder turns a batch of texts into vectors, one per text and in order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline seeds museum facts and passages into SQLite and the vector store.
type Pipeline struct {
	museums     storage.MuseumStore
	passages    storage.PassageStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	vectorSize  int
	batchSize   int
	texter      *PlainTexter
}

// NewPipeline creates a new seeding pipeline.
func NewPipeline(
	museums storage.MuseumStore,
	passages storage.PassageStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	vectorSize int,
) *Pipeline {
	return &Pipeline{
		museums:     museums,
		passages:    passages,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		vectorSize:  vectorSize,
		batchSize:   DefaultBatchSize,
		texter:      NewPlainTexter(),
	}
}

// EnsureCollection creates the passage collection if it does not exist yet.
func (p *Pipeline) EnsureCollection(ctx context.Context) error {
	if err := p.vectorStore.EnsureCollection(ctx, p.collection, p.vectorSize); err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", p.collection, err)
	}
	return nil
}

type preparedPassage struct {
	fixture PassageFixture
	text    string
}

// IndexMuseum stores a museum's fact record and replaces its passages.
// Passages are embedded before anything is deleted, so a failed embedding
// call leaves the previous passages in place.
func (p *Pipeline) IndexMuseum(ctx context.Context, m MuseumFixture, report *Report) error {
	logger := contextutil.LoggerFromContext(ctx).With("museum_id", m.ID)

	if err := p.museums.Upsert(ctx, m.Record()); err != nil {
		return fmt.Errorf("failed to upsert museum: %w", err)
	}

	prepared := make([]preparedPassage, 0, len(m.Passages))
	for _, pf := range m.Passages {
		text := p.texter.PlainText(pf.Text)
		if text == "" {
			report.PassagesSkipped++
			continue
		}
		prepared = append(prepared, preparedPassage{fixture: pf, text: text})
	}

	texts := make([]string, len(prepared))
	for i, pp := range prepared {
		texts[i] = pp.text
	}
	embeddings, err := p.embedBatches(ctx, texts)
	if err != nil {
		return err
	}

	oldIDs, err := p.passages.ListIDsByMuseum(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("failed to list old passage IDs: %w", err)
	}
	if len(oldIDs) > 0 {
		// Vectors go first: an orphaned vector still carries its text and tenant.
		if err := p.vectorStore.Delete(ctx, p.collection, oldIDs); err != nil {
			return fmt.Errorf("failed to delete %d old passages from vector store: %w", len(oldIDs), err)
		}
		if err := p.passages.DeleteByMuseum(ctx, m.ID); err != nil {
			return fmt.Errorf("failed to delete old passages: %w", err)
		}
		report.PassagesReplaced += len(oldIDs)
	}

	if len(prepared) == 0 {
		logger.WarnContext(ctx, "museum has no passages")
		return nil
	}

	points := make([]vectorstore.Point, len(prepared))
	for i, pp := range prepared {
		id := uuid.NewString()

		record := &storage.PassageRecord{
			ID:        id,
			MuseumID:  m.ID,
			Position:  i,
			Content:   pp.text,
			SourceURL: pp.fixture.SourceURL,
			Metadata:  pp.fixture.Metadata,
		}
		if err := p.passages.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to insert passage: %w", err)
		}

		meta := map[string]any{
			vectorstore.FieldTenantID: m.ID,
			vectorstore.FieldText:     pp.text,
			"position":                i,
		}
		if pp.fixture.SourceURL != "" {
			meta[vectorstore.FieldSourceURL] = pp.fixture.SourceURL
		}
		points[i] = vectorstore.Point{ID: id, Vec: embeddings[i], Meta: meta}
		report.observePassage(pp.text)
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	report.PassagesIndexed += len(points)
	logger.InfoContext(ctx, "indexed museum", "name", m.Name, "passages", len(points), "replaced", len(oldIDs))
	return nil
}

func (p *Pipeline) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		batch, err := p.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(batch))
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

// IndexAll ensures the collection exists and indexes every museum in the fixture.
// Errors for individual museums are logged but don't stop the run.
func (p *Pipeline) IndexAll(ctx context.Context, fixture *Fixture) (*Report, error) {
	logger := contextutil.LoggerFromContext(ctx)
	report := &Report{}

	if err := p.EnsureCollection(ctx); err != nil {
		return report, err
	}

	logger.InfoContext(ctx, "starting seeding", "museums", len(fixture.Museums))

	for _, m := range fixture.Museums {
		select {
		case <-ctx.Done():
			report.finish()
			return report, ctx.Err()
		default:
		}

		if err := p.IndexMuseum(ctx, m, report); err != nil {
			report.MuseumsFailed++
			logger.ErrorContext(ctx, "failed to index museum", "museum_id", m.ID, "error", err)
			continue
		}
		report.MuseumsIndexed++
	}
	report.finish()

	logger.InfoContext(ctx, "seeding completed",
		"museums", report.MuseumsIndexed,
		"failed", report.MuseumsFailed,
		"passages", report.PassagesIndexed,
		"skipped", report.PassagesSkipped)

	if report.MuseumsFailed > 0 {
		return report, fmt.Errorf("seeding completed with %d errors", report.MuseumsFailed)
	}
	return report, nil
}
