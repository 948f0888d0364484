package rag

// AskRequest represents a question about one museum.
type AskRequest struct {
	// TenantID is the museum's UUID in canonical form.
	TenantID string `json:"tenant_id"`
	// Question is the visitor's question.
	Question string `json:"question"`
	// MatchCount optionally bounds how many passages ground the answer.
	// Nil selects the default; other values are clamped to the allowed range.
	MatchCount *int `json:"match_count,omitempty"`
}

// Source is a citation returned with an answer.
type Source struct {
	// ID is the passage id, or a synthetic id for structured facts.
	ID string `json:"id"`
	// SourceURL is the page the passage came from, if known.
	SourceURL *string `json:"source_url,omitempty"`
	// Similarity is the cosine-derived relevance in [0,1].
	Similarity float64 `json:"similarity"`
}

// PrimarySource is the single best-supported source with a display label.
type PrimarySource struct {
	Source
	Confidence string `json:"confidence"`
}

// AskResponse is the answer to an AskRequest.
type AskResponse struct {
	Answer  string         `json:"answer"`
	Sources []Source       `json:"sources"`
	Primary *PrimarySource `json:"primary_source,omitempty"`
	// Outcome records which branch of the pipeline produced the answer.
	Outcome string `json:"-"`
}

// RetrievalMatch is a passage returned by vector search, before gating.
type RetrievalMatch struct {
	ID        string
	Text      string
	SourceURL string
	// Similarity is the raw score from the vector store (number or numeric text).
	Similarity any
	Metadata   map[string]any
}

// ScoredMatch is a retrieval match whose similarity parsed to a number.
type ScoredMatch struct {
	ID         string
	Text       string
	SourceURL  string
	Similarity float64
}
