package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks museum-guide/internal/rag Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_model.go -package=mocks museum-guide/internal/rag ChatModel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"museum-guide/internal/contextutil"
	"museum-guide/internal/llm"
	"museum-guide/internal/metrics"
	"museum-guide/internal/storage"
	"museum-guide/internal/vectorstore"
)

// Upstream service names used in errors, logs and metrics.
const (
	ServiceEmbedding    = "embedding"
	ServiceVectorSearch = "vector_search"
	ServiceChat         = "chat"
)

// Engine answers visitor questions about a museum.
type Engine interface {
	// Ask answers a question from the museum's facts or its passages.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// Embedder turns text into a vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// ChatModel generates a reply to a conversation.
type ChatModel interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Options tunes the pipeline.
type Options struct {
	MinSimilarity     float64
	Fetch             FetchPolicy
	DefaultMatchCount int
	MaxMatchCount     int
	// UpstreamTimeout bounds each embedding, search and chat call. Zero disables it.
	UpstreamTimeout time.Duration
	// MissingCredentials names credentials that were not configured.
	// When non-empty every query fails with a ConfigurationError.
	MissingCredentials []string
	Chat               llm.ChatParams
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		MinSimilarity:     0.45,
		Fetch:             DefaultFetchPolicy,
		DefaultMatchCount: 5,
		MaxMatchCount:     10,
		UpstreamTimeout:   20 * time.Second,
	}
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder  Embedder
	retriever *Retriever
	composer  *Composer
	museums   storage.MuseumStore
	passages  storage.PassageStore
	opts      Options
}

// NewEngine creates a new RAG engine.
func NewEngine(
	embedder Embedder,
	chat ChatModel,
	vectorStore vectorstore.VectorStore,
	collection string,
	museums storage.MuseumStore,
	passages storage.PassageStore,
	opts Options,
) Engine {
	return &ragEngine{
		embedder:  embedder,
		retriever: NewRetriever(vectorStore, passages, collection, opts.Fetch),
		composer:  NewComposer(chat, opts.Chat),
		museums:   museums,
		passages:  passages,
		opts:      opts,
	}
}

// Ask answers a question using structured facts first, then retrieval.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	resp, err := e.ask(ctx, req)
	if err != nil {
		metrics.RecordOutcome(metrics.OutcomeError)
		return AskResponse{}, err
	}
	metrics.RecordOutcome(resp.Outcome)
	return resp, nil
}

func (e *ragEngine) ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateRequest(req); err != nil {
		return AskResponse{}, err
	}
	// Stored ids and payload tenant ids are lowercase.
	req.TenantID = strings.ToLower(req.TenantID)
	if len(e.opts.MissingCredentials) > 0 {
		return AskResponse{}, &ConfigurationError{Missing: e.opts.MissingCredentials}
	}

	matchCount := ClampMatchCount(req.MatchCount, e.opts.DefaultMatchCount, e.opts.MaxMatchCount)
	logger = logger.With("tenant_id", req.TenantID)
	logger.InfoContext(ctx, "query started",
		"question_length", len(req.Question),
		"match_count", matchCount,
	)

	museum, err := e.museums.GetByID(ctx, req.TenantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return AskResponse{}, fmt.Errorf("museum %s: %w", req.TenantID, ErrNotFound)
		}
		return AskResponse{}, WrapError(err, "failed to load museum")
	}

	if fact, ok := ResolveFact(req.Question, museum); ok {
		outcome := metrics.OutcomeStructured
		if !fact.Found {
			outcome = metrics.OutcomeMissingFact
		}
		logger.InfoContext(ctx, "answered from museum facts", "category", fact.Category, "found", fact.Found)
		return AskResponse{
			Answer:  fact.Answer,
			Sources: fact.Sources,
			Primary: PrimarySourceOf(fact.Sources),
			Outcome: outcome,
		}, nil
	}

	var queryVector []float32
	err = e.callUpstream(ctx, ServiceEmbedding, func(ctx context.Context) error {
		vec, err := e.embedder.EmbedText(ctx, req.Question)
		if err != nil {
			return err
		}
		if len(vec) == 0 {
			return errors.New("no embedding returned for question")
		}
		queryVector = vec
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return AskResponse{}, err
	}

	var matches []RetrievalMatch
	err = e.callUpstream(ctx, ServiceVectorSearch, func(ctx context.Context) error {
		var err error
		matches, err = e.retriever.Retrieve(ctx, req.TenantID, queryVector, matchCount)
		return err
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search passages", "error", err)
		return AskResponse{}, err
	}

	strong := Gate(matches, e.opts.MinSimilarity, matchCount)
	logger.InfoContext(ctx, "relevance gate applied",
		"retrieved", len(matches),
		"strong", len(strong),
		"min_similarity", e.opts.MinSimilarity,
	)
	if len(strong) > 0 {
		logger.DebugContext(ctx, "top match", "passage_id", strong[0].ID, "similarity", strong[0].Similarity)
	}

	if len(strong) == 0 {
		if IsTimeSensitive(req.Question) {
			logger.InfoContext(ctx, "refusing time-sensitive question without context")
			return AskResponse{Answer: TimeSensitiveAnswer, Sources: []Source{}, Outcome: metrics.OutcomeRefusedTimeSensitive}, nil
		}
		logger.InfoContext(ctx, "refusing question without context")
		return AskResponse{Answer: NoContextAnswer, Sources: []Source{}, Outcome: metrics.OutcomeRefusedNoContext}, nil
	}

	var answer string
	err = e.callUpstream(ctx, ServiceChat, func(ctx context.Context) error {
		var err error
		answer, err = e.composer.Compose(ctx, req.Question, strong)
		return err
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to compose answer", "error", err)
		return AskResponse{}, err
	}

	sources := AssembleSources(ctx, strong, e.passages)
	logger.InfoContext(ctx, "query completed", "answer_length", len(answer), "sources", len(sources))

	return AskResponse{
		Answer:  answer,
		Sources: sources,
		Primary: PrimarySourceOf(sources),
		Outcome: metrics.OutcomeAnswered,
	}, nil
}

// callUpstream runs fn under the upstream timeout and records its latency.
// Any failure, including a deadline, becomes an UpstreamError.
func (e *ragEngine) callUpstream(ctx context.Context, service string, fn func(ctx context.Context) error) error {
	if e.opts.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.UpstreamTimeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveUpstream(service, start, err)
	if err != nil {
		return &UpstreamError{Service: service, Err: err}
	}
	return nil
}

func validateRequest(req AskRequest) error {
	if !IsTenantID(req.TenantID) {
		return &ValidationError{Field: "tenant_id", Message: "must be a UUID in canonical form"}
	}
	if strings.TrimSpace(req.Question) == "" {
		return &ValidationError{Field: "question", Message: "must not be empty"}
	}
	return nil
}

// IsTenantID reports whether id is a UUID in 8-4-4-4-12 hex form.
func IsTenantID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// ClampMatchCount applies the default when requested is nil and clamps to [1, maxCount].
func ClampMatchCount(requested *int, defaultCount, maxCount int) int {
	n := defaultCount
	if requested != nil {
		n = *requested
	}
	if maxCount > 0 {
		n = min(n, maxCount)
	}
	return max(n, 1)
}
