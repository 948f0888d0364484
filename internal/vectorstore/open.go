package vectorstore

import (
	"context"
	"fmt"

	"museum-guide/internal/config"
)

// Open connects to the vector backend selected in cfg.
// The returned close function releases the backend's connections.
func Open(ctx context.Context, cfg *config.Config) (VectorStore, func(), error) {
	switch cfg.VectorBackend {
	case config.BackendQdrant:
		store, err := NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.BackendPgVector:
		store, err := NewPgVectorStore(ctx, cfg.PgVectorDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
}
