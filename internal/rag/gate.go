package rag

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// NoContextAnswer is returned when no passage clears the similarity floor.
	NoContextAnswer = "I don't have enough information in this museum's content to answer that."
	// TimeSensitiveAnswer is returned for questions about changing information with no strong context.
	TimeSensitiveAnswer = "That information changes frequently. Please check the museum's official website for the most current details."
)

var timeSensitivePattern = regexp.MustCompile(`\b(this week|today|right now|currently|current|now|tonight|tomorrow|yesterday)\b`)

// IsTimeSensitive reports whether the question asks about something that changes over time.
func IsTimeSensitive(question string) bool {
	return timeSensitivePattern.MatchString(normalizeQuestion(question))
}

// ParseSimilarity converts a raw similarity from the vector store into a number.
// Floats, integers, json.Number and numeric text are accepted.
func ParseSimilarity(raw any) (float64, bool) {
	var v float64
	switch s := raw.(type) {
	case float64:
		v = s
	case float32:
		v = float64(s)
	case int:
		v = float64(s)
	case int32:
		v = float64(s)
	case int64:
		v = float64(s)
	case json.Number:
		f, err := s.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Gate keeps matches whose similarity is at least minSimilarity, in retrieval
// order, up to count entries. Matches with unparseable similarity are dropped.
func Gate(matches []RetrievalMatch, minSimilarity float64, count int) []ScoredMatch {
	strong := make([]ScoredMatch, 0, min(len(matches), max(count, 0)))
	for _, m := range matches {
		if len(strong) >= count {
			break
		}
		sim, ok := ParseSimilarity(m.Similarity)
		if !ok || sim < minSimilarity {
			continue
		}
		strong = append(strong, ScoredMatch{
			ID:         m.ID,
			Text:       m.Text,
			SourceURL:  m.SourceURL,
			Similarity: sim,
		})
	}
	return strong
}
