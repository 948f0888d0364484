package indexer

import (
	"math"
	"sort"
	"unicode/utf8"
)

// TokensPerRune approximates token counts from rune counts (about 4 runes per token).
const TokensPerRune = 4.0

// Report summarizes a seeding run. PassagesSkipped counts passages that were
// empty after markdown flattening; PassagesReplaced counts old passages removed
// before re-indexing.
type Report struct {
	MuseumsIndexed   int               `json:"museums_indexed"`
	MuseumsFailed    int               `json:"museums_failed"`
	PassagesIndexed  int               `json:"passages_indexed"`
	PassagesSkipped  int               `json:"passages_skipped"`
	PassagesReplaced int               `json:"passages_replaced"`
	PassageTokens    PassageTokenStats `json:"passage_tokens"`

	tokenCounts []int
}

// PassageTokenStats describes estimated token counts of indexed passages.
type PassageTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

func (r *Report) observePassage(text string) {
	r.tokenCounts = append(r.tokenCounts, estimateTokens(text))
}

func (r *Report) finish() {
	r.PassageTokens = computeTokenStats(r.tokenCounts)
}

func estimateTokens(text string) int {
	n := int(math.Round(float64(utf8.RuneCountInString(text)) / TokensPerRune))
	if n < 1 {
		return 1
	}
	return n
}

func computeTokenStats(tokenCounts []int) PassageTokenStats {
	if len(tokenCounts) == 0 {
		return PassageTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range sorted {
		sum += count
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return PassageTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
