package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_museum_store.go -package=mocks museum-guide/internal/storage MuseumStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MuseumStore defines the interface for museum fact record operations.
type MuseumStore interface {
	// GetByID gets a museum by its tenant ID.
	// Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*MuseumRecord, error)
	// Upsert inserts a museum or replaces all of its facts.
	Upsert(ctx context.Context, museum *MuseumRecord) error
}

// MuseumRepo provides methods for museum operations.
// It implements the MuseumStore interface.
type MuseumRepo struct {
	db *sql.DB
}

// NewMuseumRepo creates a new MuseumRepo.
func NewMuseumRepo(db *sql.DB) *MuseumRepo {
	return &MuseumRepo{db: db}
}

// GetByID gets a museum by its tenant ID.
// Returns nil and ErrNotFound if not found.
func (r *MuseumRepo) GetByID(ctx context.Context, id string) (*MuseumRecord, error) {
	var m MuseumRecord
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(name, ''), COALESCE(former_name, ''), COALESCE(founded_year, 0),
		        COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(postal_code, ''),
		        COALESCE(country, ''), COALESCE(website, ''), COALESCE(mission, ''), COALESCE(director, ''),
		        COALESCE(phone, ''), updated_at
		 FROM museums WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.Name, &m.FormerName, &m.FoundedYear,
		&m.Address, &m.City, &m.State, &m.PostalCode,
		&m.Country, &m.Website, &m.Mission, &m.Director,
		&m.Phone, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query museum: %w", err)
	}

	m.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return &m, nil
}

// Upsert inserts a museum or replaces all of its facts.
// Empty fields are stored as NULL so they read back as "not on file".
func (r *MuseumRepo) Upsert(ctx context.Context, m *MuseumRecord) error {
	if m.ID == "" {
		return fmt.Errorf("museum id is required")
	}

	var foundedYear any
	if m.FoundedYear > 0 {
		foundedYear = m.FoundedYear
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO museums (id, name, former_name, founded_year, address, city, state, postal_code,
		                      country, website, mission, director, phone, updated_at)
		 VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''),
		         NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		 name = excluded.name, former_name = excluded.former_name, founded_year = excluded.founded_year,
		 address = excluded.address, city = excluded.city, state = excluded.state,
		 postal_code = excluded.postal_code, country = excluded.country, website = excluded.website,
		 mission = excluded.mission, director = excluded.director, phone = excluded.phone,
		 updated_at = CURRENT_TIMESTAMP`,
		m.ID, m.Name, m.FormerName, foundedYear, m.Address, m.City, m.State, m.PostalCode,
		m.Country, m.Website, m.Mission, m.Director, m.Phone,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert museum: %w", err)
	}

	return nil
}

// parseTimestamp parses a SQLite DATETIME string.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	// SQLite may hand back RFC3339 depending on how the value was written
	return time.Parse(time.RFC3339, s)
}
