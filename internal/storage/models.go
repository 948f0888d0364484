package storage

import "time"

// MuseumRecord is a tenant's structured fact record.
// Empty strings and a zero FoundedYear mean the fact is not on file.
type MuseumRecord struct {
	ID          string // UUID, doubles as the tenant id
	Name        string
	FormerName  string
	FoundedYear int
	Address     string
	City        string
	State       string
	PostalCode  string
	Country     string
	Website     string
	Mission     string
	Director    string
	Phone       string
	UpdatedAt   time.Time
}

// PassageRecord is a retrievable chunk of museum content.
type PassageRecord struct {
	ID        string         // UUID (same as the vector point ID)
	MuseumID  string         // Foreign key to museums.id
	Position  int            // Order within the museum's passages (starts at 0)
	Content   string         // Plain text
	SourceURL string         // Page the passage was taken from, may be empty
	Metadata  map[string]any // Free-form attributes from ingestion
}
