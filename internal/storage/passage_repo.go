package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_passage_store.go -package=mocks museum-guide/internal/storage PassageStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PassageStore defines the interface for passage storage operations.
type PassageStore interface {
	// Insert inserts a single passage.
	// The passage.ID must be set (UUID) before calling this method.
	Insert(ctx context.Context, passage *PassageRecord) error
	// DeleteByMuseum deletes all passages for a given museum ID.
	DeleteByMuseum(ctx context.Context, museumID string) error
	// ListIDsByMuseum returns all passage IDs for a museum, ordered by position.
	ListIDsByMuseum(ctx context.Context, museumID string) ([]string, error)
	// GetByID gets a passage by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*PassageRecord, error)
	// SourceURLs maps passage IDs to their source URLs.
	// IDs that are unknown or have no URL are absent from the map.
	SourceURLs(ctx context.Context, ids []string) (map[string]string, error)
}

// PassageRepo provides methods for passage operations.
// It implements the PassageStore interface.
type PassageRepo struct {
	db *sql.DB
}

// NewPassageRepo creates a new PassageRepo.
func NewPassageRepo(db *sql.DB) *PassageRepo {
	return &PassageRepo{db: db}
}

// Insert inserts a single passage.
func (r *PassageRepo) Insert(ctx context.Context, p *PassageRecord) error {
	meta := []byte("{}")
	if len(p.Metadata) > 0 {
		var err error
		meta, err = json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal passage metadata: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO passages (id, museum_id, position, content, source_url, metadata) VALUES (?, ?, ?, ?, NULLIF(?, ''), ?)",
		p.ID, p.MuseumID, p.Position, p.Content, p.SourceURL, string(meta),
	)
	if err != nil {
		return fmt.Errorf("failed to insert passage: %w", err)
	}
	return nil
}

// DeleteByMuseum deletes all passages for a given museum ID.
// Used when re-seeding a museum to remove old passages before inserting new ones.
func (r *PassageRepo) DeleteByMuseum(ctx context.Context, museumID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM passages WHERE museum_id = ?", museumID)
	if err != nil {
		return fmt.Errorf("failed to delete passages by museum: %w", err)
	}
	return nil
}

// ListIDsByMuseum returns all passage IDs for a museum, ordered by position.
// Returns an empty slice if no passages exist (not an error).
func (r *PassageRepo) ListIDsByMuseum(ctx context.Context, museumID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM passages WHERE museum_id = ? ORDER BY position",
		museumID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query passage IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan passage ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// GetByID gets a passage by its ID. Returns ErrNotFound if not found.
func (r *PassageRepo) GetByID(ctx context.Context, id string) (*PassageRecord, error) {
	var p PassageRecord
	var meta string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, museum_id, position, content, COALESCE(source_url, ''), metadata FROM passages WHERE id = ?",
		id,
	).Scan(&p.ID, &p.MuseumID, &p.Position, &p.Content, &p.SourceURL, &meta)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query passage: %w", err)
	}

	if meta != "" && meta != "{}" {
		if err := json.Unmarshal([]byte(meta), &p.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal passage metadata: %w", err)
		}
	}

	return &p, nil
}

// SourceURLs maps passage IDs to their source URLs.
func (r *PassageRepo) SourceURLs(ctx context.Context, ids []string) (map[string]string, error) {
	urls := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return urls, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, source_url FROM passages WHERE source_url IS NOT NULL AND id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query source urls: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var id, url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, fmt.Errorf("failed to scan source url: %w", err)
		}
		urls[id] = url
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return urls, nil
}
