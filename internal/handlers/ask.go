package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"museum-guide/internal/contextutil"
	"museum-guide/internal/rag"
)

// maxAskBodyBytes bounds the request body read by AskHandler.
const maxAskBodyBytes = 64 << 10

// AskHandler handles HTTP requests for museum questions.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest represents the HTTP request payload for a question.
//
// swagger:model AskRequest
type AskRequest struct {
	// Museum UUID in canonical form
	TenantID string `json:"tenant_id"`

	// The visitor's question
	Question string `json:"question"`

	// Optional number of passages to ground the answer (clamped to 1..10)
	MatchCount *int `json:"match_count,omitempty"`
}

// AskResponse represents the HTTP response payload for a question.
//
// swagger:model AskResponse
type AskResponse struct {
	// The answer text, or a fixed refusal sentence
	Answer string `json:"answer"`

	// Every passage or fact used for the answer, in retrieval order
	Sources []SourceResponse `json:"sources"`

	// The single best-supported source for display
	PrimarySource *PrimarySourceResponse `json:"primary_source,omitempty"`
}

// SourceResponse represents a citation.
//
// swagger:model SourceResponse
type SourceResponse struct {
	ID         string  `json:"id"`
	SourceURL  *string `json:"source_url,omitempty"`
	Similarity float64 `json:"similarity"`
}

// PrimarySourceResponse is a citation with a confidence label.
//
// swagger:model PrimarySourceResponse
type PrimarySourceResponse struct {
	SourceResponse
	Confidence string `json:"confidence"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error category
	Error string `json:"error"`

	// Diagnostic detail for client-correctable errors
	Detail string `json:"detail,omitempty"`
}

// ServeHTTP handles HTTP requests for museum questions.
//
// Answer a visitor question from the museum's facts or indexed passages.
// Refusals are successful responses with an empty source list.
//
// swagger:route POST /api/v1/ask askQuestion
//
// # Ask a question about a museum
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Answer or refusal
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Invalid tenant id or empty question
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'404':
//	  description: Unknown museum
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Missing configuration or internal error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Upstream service failure
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBodyBytes)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.engine.Ask(ctx, rag.AskRequest{
		TenantID:   req.TenantID,
		Question:   req.Question,
		MatchCount: req.MatchCount,
	})
	if err != nil {
		h.handleEngineError(ctx, w, err)
		return
	}

	out := AskResponse{
		Answer:  resp.Answer,
		Sources: make([]SourceResponse, 0, len(resp.Sources)),
	}
	for _, src := range resp.Sources {
		out.Sources = append(out.Sources, toSourceResponse(src))
	}
	if resp.Primary != nil {
		out.PrimarySource = &PrimarySourceResponse{
			SourceResponse: toSourceResponse(resp.Primary.Source),
			Confidence:     resp.Primary.Confidence,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func toSourceResponse(src rag.Source) SourceResponse {
	return SourceResponse{
		ID:         src.ID,
		SourceURL:  src.SourceURL,
		Similarity: src.Similarity,
	}
}

// handleEngineError maps engine errors to HTTP status codes.
// Upstream diagnostics are logged, not returned.
func (h *AskHandler) handleEngineError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *rag.ValidationError
	var configErr *rag.ConfigurationError
	var upstreamErr *rag.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "rejected question", "field", validationErr.Field, "error", err)
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Detail: validationErr.Error()})
	case errors.Is(err, rag.ErrNotFound):
		logger.WarnContext(ctx, "unknown museum", "error", err)
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "museum not found"})
	case errors.As(err, &configErr):
		logger.ErrorContext(ctx, "service not configured", "missing", configErr.Missing)
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "service not configured", Detail: configErr.Error()})
	case errors.As(err, &upstreamErr):
		logger.ErrorContext(ctx, "upstream failure", "service", upstreamErr.Service, "error", err)
		writeError(w, http.StatusBadGateway, ErrorResponse{Error: "upstream service error"})
	default:
		logger.ErrorContext(ctx, "failed to answer question", "error", err)
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
