package api

import (
	"net/http"
)

// HealthResponse is the liveness check response body.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /health. The ranking pipeline has no external
// dependencies, so liveness is the only meaningful check.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r.Context(), http.StatusOK, HealthResponse{Status: "healthy"})
}
