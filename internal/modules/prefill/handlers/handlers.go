// Package handlers provides HTTP handlers for order prefill.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/precept/internal/modules/prefill"
	"github.com/aristath/precept/internal/modules/prefill/domain"
	"github.com/aristath/precept/internal/modules/prefill/engine"
	"github.com/aristath/precept/internal/modules/refdata"
)

// Handler handles prefill HTTP requests
type Handler struct {
	pipeline *engine.Pipeline
	store    *refdata.Store
	audit    *prefill.Repository
	log      zerolog.Logger
}

// NewHandler creates a new prefill handler
func NewHandler(pipeline *engine.Pipeline, store *refdata.Store, audit *prefill.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
		audit:    audit,
		log:      log.With().Str("handler", "prefill").Logger(),
	}
}

// HandleRecommend handles POST /api/recommend
// Runs the decision pipeline against the current reference dataset and
// returns the prefilled ticket. The audit write is best-effort: a failure
// is logged and the recommendation is still served.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validateRequest(req); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	dataset := h.store.Current()
	if dataset == nil {
		h.writeError(w, http.StatusServiceUnavailable, "Reference data not loaded yet")
		return
	}

	rec := h.pipeline.Run(req, dataset, time.Now())

	if h.audit != nil {
		if _, err := h.audit.Insert(req, rec, time.Now()); err != nil {
			h.log.Warn().
				Err(err).
				Str("client_id", req.ClientID).
				Str("symbol", req.Symbol).
				Msg("Failed to record recommendation")
		}
	}

	h.writeJSON(w, http.StatusOK, rec)
}

// HandleListRecommendations handles GET /api/recommendations
// Returns the most recent audit entries, newest first.
func (h *Handler) HandleListRecommendations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.audit.Recent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read recommendation history")
		h.writeError(w, http.StatusInternalServerError, "Failed to read recommendation history")
		return
	}
	if entries == nil {
		entries = []prefill.AuditEntry{}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"recommendations": entries,
			"count":           len(entries),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// validateRequest checks the request fields the pipeline assumes are sane.
// Returns an empty string when valid, otherwise the rejection message.
func validateRequest(req domain.OrderRequest) string {
	switch {
	case req.ClientID == "":
		return "client_id is required"
	case req.Symbol == "":
		return "symbol is required"
	case req.OrderSize <= 0:
		return "order_size must be positive"
	case !strings.EqualFold(req.Direction, "Buy") && !strings.EqualFold(req.Direction, "Sell"):
		return "direction must be Buy or Sell"
	case req.TimeToClose < 0:
		return "time_to_close cannot be negative"
	}
	return ""
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response as JSON
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
