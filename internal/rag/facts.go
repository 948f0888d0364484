package rag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"museum-guide/internal/storage"
)

// MissingFactAnswer is returned when a fact question matches but the record lacks the field.
const MissingFactAnswer = "I couldn't find that information in the museum's records."

// Fact categories in resolution order.
const (
	FactDirector   = "director"
	FactMission    = "mission"
	FactFounded    = "founded"
	FactFormerName = "former_name"
	FactAddress    = "address"
	FactWebsite    = "website"
	FactPhone      = "phone"
	FactName       = "name"
)

type factRule struct {
	category string
	triggers *regexp.Regexp
	// value returns the rendered fact, or "" when the record lacks it.
	value    func(m *storage.MuseumRecord) string
	template string
}

var factRules = []factRule{
	{
		category: FactDirector,
		triggers: regexp.MustCompile(`\b(director|ceo|leadership|executive director|museum director)\b`),
		value:    func(m *storage.MuseumRecord) string { return m.Director },
		template: "The museum's director is %s.",
	},
	{
		category: FactMission,
		triggers: regexp.MustCompile(`\b(mission|purpose|goals?)\b`),
		value:    func(m *storage.MuseumRecord) string { return m.Mission },
		template: "The museum's mission is: %s",
	},
	{
		category: FactFounded,
		triggers: regexp.MustCompile(`\b(founded|established|built)\b|\bwhen did\b.*\bopen\b`),
		value: func(m *storage.MuseumRecord) string {
			if m.FoundedYear <= 0 {
				return ""
			}
			return strconv.Itoa(m.FoundedYear)
		},
		template: "The museum was founded in %s.",
	},
	{
		category: FactFormerName,
		triggers: regexp.MustCompile(`\b(formerly|former name|used to be called|old name|renamed|name change)\b`),
		value:    func(m *storage.MuseumRecord) string { return m.FormerName },
		template: "The museum was formerly known as %s.",
	},
	{
		category: FactAddress,
		triggers: regexp.MustCompile(`\b(address|location)\b|\bwhere\b.*\blocated\b|\bwhere is it\b|\bhow do i get there\b`),
		value:    formatAddress,
		template: "The museum is located at %s.",
	},
	{
		category: FactWebsite,
		triggers: regexp.MustCompile(`\b(website|web site|official site|url)\b`),
		value:    func(m *storage.MuseumRecord) string { return m.Website },
		template: "The museum's official website is %s.",
	},
	{
		category: FactPhone,
		triggers: regexp.MustCompile(`\b(phone|telephone|contact number|call)\b`),
		value:    func(m *storage.MuseumRecord) string { return m.Phone },
		template: "You can reach the museum at %s.",
	},
	{
		category: FactName,
		// Narrow on purpose: "what is the name" only when nothing else follows.
		triggers: regexp.MustCompile(`\b(name of the museum|full name)\b|^what(?:'s| is)\s+(?:the\s+|its\s+|this\s+)?(?:museum'?s\s+)?name\s*\??$`),
		value:    func(m *storage.MuseumRecord) string { return m.Name },
		template: "The museum's full name is %s.",
	},
}

// FactAnswer is a direct answer from the museum's fact record.
type FactAnswer struct {
	Category string
	Answer   string
	Sources  []Source
	// Found is false when the category matched but the field is empty.
	Found bool
}

// ResolveFact tries to answer the question from structured facts.
// It returns false when no fact category matches the question.
func ResolveFact(question string, museum *storage.MuseumRecord) (FactAnswer, bool) {
	q := normalizeQuestion(question)

	for _, rule := range factRules {
		if !rule.triggers.MatchString(q) {
			continue
		}

		value := strings.TrimSpace(rule.value(museum))
		if value == "" {
			return FactAnswer{
				Category: rule.category,
				Answer:   MissingFactAnswer,
				Sources:  []Source{},
			}, true
		}

		return FactAnswer{
			Category: rule.category,
			Answer:   fmt.Sprintf(rule.template, value),
			Sources:  []Source{factSource(museum, rule.category)},
			Found:    true,
		}, true
	}

	return FactAnswer{}, false
}

func factSource(museum *storage.MuseumRecord, category string) Source {
	src := Source{
		ID:         fmt.Sprintf("%s:%s", museum.ID, category),
		Similarity: 1.0,
	}
	if website := strings.TrimSpace(museum.Website); website != "" {
		src.SourceURL = &website
	}
	return src
}

func formatAddress(m *storage.MuseumRecord) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{
		m.Address,
		m.City,
		strings.TrimSpace(m.State + " " + m.PostalCode),
		m.Country,
	} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

var questionReplacer = strings.NewReplacer("’", "'", "‘", "'")

func normalizeQuestion(question string) string {
	return strings.TrimSpace(questionReplacer.Replace(strings.ToLower(question)))
}
