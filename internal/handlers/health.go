package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"museum-guide/internal/contextutil"
	"museum-guide/internal/vectorstore"
)

// Pinger reports whether a database connection is usable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health check names, as reported in HealthResponse.Checks.
const (
	CheckFactStore   = "fact_store"
	CheckVectorStore = "vector_store"
)

// dependencyCheck probes one backend the query pipeline cannot run without.
type dependencyCheck struct {
	name  string
	probe func(ctx context.Context) error
}

// HealthHandler reports whether the museum fact store and the passage
// collection are reachable.
type HealthHandler struct {
	checks  []dependencyCheck
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler over the SQLite fact store and the
// vector collection that holds museum passages.
func NewHealthHandler(factStore Pinger, vectorStore vectorstore.VectorStore, collection string) *HealthHandler {
	return &HealthHandler{
		checks: []dependencyCheck{
			{
				name:  CheckFactStore,
				probe: factStore.PingContext,
			},
			{
				name: CheckVectorStore,
				probe: func(ctx context.Context) error {
					exists, err := vectorStore.CollectionExists(ctx, collection)
					if err != nil {
						return err
					}
					if !exists {
						return fmt.Errorf("collection %s does not exist", collection)
					}
					return nil
				},
			},
		},
		timeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// "healthy" when every dependency answered, otherwise "unhealthy"
	Status string `json:"status"`

	// RFC 3339 time of the check
	Timestamp string `json:"timestamp"`

	// "ok" or "error" per dependency
	Checks map[string]string `json:"checks"`

	// One "<dependency>_unavailable" entry per failed check
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// Pings the museum fact store and checks that the passage collection exists.
// Embedding and chat providers are not probed.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Both stores are reachable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: At least one store is unreachable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status: "healthy",
		Checks: make(map[string]string, len(h.checks)),
	}
	for _, check := range h.checks {
		if err := check.probe(checkCtx); err != nil {
			logger.WarnContext(ctx, "health check failed", "check", check.name, "error", err)
			resp.Checks[check.name] = "error"
			resp.Issues = append(resp.Issues, check.name+"_unavailable")
			continue
		}
		resp.Checks[check.name] = "ok"
	}
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)

	status := http.StatusOK
	if len(resp.Issues) > 0 {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
