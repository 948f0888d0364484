package indexer

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"museum-guide/internal/storage"
)

// Fixture is a seed file of museums and their pre-split passages.
type Fixture struct {
	Museums []MuseumFixture `yaml:"museums"`
}

// MuseumFixture holds one museum's fact record and passages.
type MuseumFixture struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	FormerName  string           `yaml:"former_name"`
	FoundedYear int              `yaml:"founded_year"`
	Address     string           `yaml:"address"`
	City        string           `yaml:"city"`
	State       string           `yaml:"state"`
	PostalCode  string           `yaml:"postal_code"`
	Country     string           `yaml:"country"`
	Website     string           `yaml:"website"`
	Mission     string           `yaml:"mission"`
	Director    string           `yaml:"director"`
	Phone       string           `yaml:"phone"`
	Passages    []PassageFixture `yaml:"passages"`
}

// PassageFixture is one passage in markdown, with the page it came from.
type PassageFixture struct {
	Text      string         `yaml:"text"`
	SourceURL string         `yaml:"source_url"`
	Metadata  map[string]any `yaml:"metadata"`
}

// LoadFixture reads and validates a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	fixture, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return fixture, nil
}

// ParseFixture decodes a YAML fixture and validates museum ids.
// Ids are normalized to lowercase canonical form.
func ParseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]bool, len(fixture.Museums))
	for i := range fixture.Museums {
		m := &fixture.Museums[i]
		id, err := uuid.Parse(strings.TrimSpace(m.ID))
		if err != nil {
			return nil, fmt.Errorf("museum %d (%q): invalid id %q: %w", i, m.Name, m.ID, err)
		}
		m.ID = id.String()
		if seen[m.ID] {
			return nil, fmt.Errorf("museum %d (%q): duplicate id %s", i, m.Name, m.ID)
		}
		seen[m.ID] = true
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("museum %s: name is required", m.ID)
		}
	}

	return &fixture, nil
}

// Record converts the fixture's facts into a storage record.
func (m MuseumFixture) Record() *storage.MuseumRecord {
	return &storage.MuseumRecord{
		ID:          m.ID,
		Name:        strings.TrimSpace(m.Name),
		FormerName:  strings.TrimSpace(m.FormerName),
		FoundedYear: m.FoundedYear,
		Address:     strings.TrimSpace(m.Address),
		City:        strings.TrimSpace(m.City),
		State:       strings.TrimSpace(m.State),
		PostalCode:  strings.TrimSpace(m.PostalCode),
		Country:     strings.TrimSpace(m.Country),
		Website:     strings.TrimSpace(m.Website),
		Mission:     strings.TrimSpace(m.Mission),
		Director:    strings.TrimSpace(m.Director),
		Phone:       strings.TrimSpace(m.Phone),
	}
}
