package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks museum-guide/internal/vectorstore VectorStore

import (
	"context"
	"errors"
	"fmt"
)

// Payload keys shared by every backend.
const (
	FieldTenantID  = "tenant_id"
	FieldText      = "text"
	FieldSourceURL = "source_url"
)

// ErrTenantFilterRequired is returned by Search when no tenant filter is given.
var ErrTenantFilterRequired = errors.New("tenant_id filter is required")

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	// Similarity is the raw score as the backend reports it: float32 from
	// Qdrant, a decimal string from pgvector. Callers normalize it.
	Similarity any
	Meta       map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search restricted to filters["tenant_id"].
	// Results are ordered by descending similarity.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// EnsureCollection creates the collection if needed and validates its vector size.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error
}

// tenantFromFilters extracts the mandatory tenant id from search filters.
func tenantFromFilters(filters map[string]any) (string, error) {
	raw, ok := filters[FieldTenantID]
	if !ok {
		return "", ErrTenantFilterRequired
	}
	tenantID, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("tenant_id filter must be a string, got %T", raw)
	}
	if tenantID == "" {
		return "", ErrTenantFilterRequired
	}
	return tenantID, nil
}
