package rag

import (
	"cmp"
	"context"
	"slices"

	"museum-guide/internal/contextutil"
)

// SourceURLLookup resolves passage ids to source URLs.
type SourceURLLookup interface {
	SourceURLs(ctx context.Context, ids []string) (map[string]string, error)
}

// AssembleSources turns strong matches into wire citations, filling in missing
// URLs from lookup. A failed lookup leaves those URLs absent.
func AssembleSources(ctx context.Context, matches []ScoredMatch, lookup SourceURLLookup) []Source {
	logger := contextutil.LoggerFromContext(ctx)

	var missing []string
	for _, m := range matches {
		if m.SourceURL == "" {
			missing = append(missing, m.ID)
		}
	}

	var urls map[string]string
	if len(missing) > 0 && lookup != nil {
		var err error
		urls, err = lookup.SourceURLs(ctx, missing)
		if err != nil {
			logger.WarnContext(ctx, "source url lookup failed", "count", len(missing), "error", err)
		}
	}

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		src := Source{ID: m.ID, Similarity: m.Similarity}
		url := m.SourceURL
		if url == "" {
			url = urls[m.ID]
		}
		if url != "" {
			src.SourceURL = &url
		}
		sources = append(sources, src)
	}
	return sources
}

// DedupeTopOne collapses sources that share a URL (or, without a URL, an id),
// keeping the most similar of each, and returns at most the single best one.
func DedupeTopOne(sources []Source) []Source {
	best := make(map[string]Source, len(sources))
	order := make([]string, 0, len(sources))
	for _, src := range sources {
		key := "id:" + src.ID
		if src.SourceURL != nil && *src.SourceURL != "" {
			key = "url:" + *src.SourceURL
		}
		current, ok := best[key]
		if !ok {
			order = append(order, key)
		}
		if !ok || src.Similarity > current.Similarity {
			best[key] = src
		}
	}

	deduped := make([]Source, 0, len(order))
	for _, key := range order {
		deduped = append(deduped, best[key])
	}
	slices.SortStableFunc(deduped, func(a, b Source) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})

	if len(deduped) > 1 {
		deduped = deduped[:1]
	}
	return deduped
}

// ConfidenceLabel describes a similarity given in percent.
func ConfidenceLabel(percent float64) string {
	switch {
	case percent >= 70:
		return "Strong"
	case percent >= 50:
		return "Good"
	default:
		return "Weak"
	}
}

// PrimarySourceOf returns the best deduplicated source with its label, or nil.
func PrimarySourceOf(sources []Source) *PrimarySource {
	top := DedupeTopOne(sources)
	if len(top) == 0 {
		return nil
	}
	return &PrimarySource{
		Source:     top[0],
		Confidence: ConfidenceLabel(top[0].Similarity * 100),
	}
}
