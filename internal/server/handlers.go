// Package server provides the HTTP server and routing for Precept.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth reports process liveness and database health. A failed
// integrity check degrades the status and returns 503 so load balancers
// rotate the instance out.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := map[string]interface{}{
		"status":   "healthy",
		"version":  "1.0.0",
		"service":  "precept",
		"database": "ok",
	}

	if err := s.db.HealthCheck(ctx); err != nil {
		s.log.Error().Err(err).Msg("Database health check failed")
		response["status"] = "degraded"
		response["database"] = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
