package rag

import (
	"context"
	"errors"
	"fmt"

	"museum-guide/internal/contextutil"
	"museum-guide/internal/storage"
	"museum-guide/internal/vectorstore"
)

// FetchPolicy controls how many candidates are requested from the vector store.
// Search ranking has no notion of the similarity floor, so the retriever asks
// for more than needed and lets the gate truncate.
type FetchPolicy struct {
	Min     int
	Padding int
	Max     int
}

// DefaultFetchPolicy floors requests at 5, adds 5 and caps at 10.
var DefaultFetchPolicy = FetchPolicy{Min: 5, Padding: 5, Max: 10}

// Size returns the number of candidates to fetch for a requested count.
func (p FetchPolicy) Size(requested int) int {
	n := max(requested, p.Min) + p.Padding
	if p.Max > 0 {
		n = min(n, p.Max)
	}
	return max(n, 1)
}

// Retriever runs tenant-scoped similarity search.
type Retriever struct {
	store      vectorstore.VectorStore
	passages   storage.PassageStore
	collection string
	policy     FetchPolicy
}

// NewRetriever creates a Retriever over the given collection.
func NewRetriever(store vectorstore.VectorStore, passages storage.PassageStore, collection string, policy FetchPolicy) *Retriever {
	return &Retriever{
		store:      store,
		passages:   passages,
		collection: collection,
		policy:     policy,
	}
}

// Retrieve returns the nearest passages for tenantID, most similar first.
// Search is filtered by tenant in the store, and every result is checked
// again here; anything not provably owned by the tenant is dropped.
func (r *Retriever) Retrieve(ctx context.Context, tenantID string, query []float32, requested int) ([]RetrievalMatch, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if tenantID == "" {
		return nil, errors.New("tenant id is required for retrieval")
	}

	k := r.policy.Size(requested)
	results, err := r.store.Search(ctx, r.collection, query, k, map[string]any{
		vectorstore.FieldTenantID: tenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	matches := make([]RetrievalMatch, 0, len(results))
	for _, result := range results {
		owner, _ := result.Meta[vectorstore.FieldTenantID].(string)
		if owner != tenantID {
			logger.WarnContext(ctx, "dropping search result from another tenant",
				"point_id", result.PointID,
				"owner", owner,
			)
			continue
		}

		text, _ := result.Meta[vectorstore.FieldText].(string)
		sourceURL, _ := result.Meta[vectorstore.FieldSourceURL].(string)

		if text == "" {
			passage, err := r.passages.GetByID(ctx, result.PointID)
			if errors.Is(err, storage.ErrNotFound) {
				logger.WarnContext(ctx, "dropping vector without a stored passage", "passage_id", result.PointID)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to fetch passage %s: %w", result.PointID, err)
			}
			if passage.MuseumID != tenantID {
				logger.WarnContext(ctx, "dropping passage owned by another tenant", "passage_id", result.PointID)
				continue
			}
			text = passage.Content
			if sourceURL == "" {
				sourceURL = passage.SourceURL
			}
		}

		matches = append(matches, RetrievalMatch{
			ID:         result.PointID,
			Text:       text,
			SourceURL:  sourceURL,
			Similarity: result.Similarity,
			Metadata:   result.Meta,
		})
	}

	logger.DebugContext(ctx, "retrieval completed",
		"k_requested", requested,
		"k_fetched", k,
		"results", len(results),
		"kept", len(matches),
	)
	return matches, nil
}
