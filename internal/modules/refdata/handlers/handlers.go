// Package handlers provides HTTP handlers for reference data status.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/precept/internal/modules/refdata"
)

// Handler handles reference data HTTP requests
type Handler struct {
	repo  *refdata.Repository
	store *refdata.Store
	log   zerolog.Logger
}

// NewHandler creates a new reference data handler
func NewHandler(repo *refdata.Repository, store *refdata.Store, log zerolog.Logger) *Handler {
	return &Handler{
		repo:  repo,
		store: store,
		log:   log.With().Str("handler", "refdata").Logger(),
	}
}

// HandleGetStatus handles GET /api/refdata/status
// Reports table row counts and the age of the in-memory dataset.
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.Counts()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read reference table counts")
		http.Error(w, "Failed to read reference data status", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"counts": map[string]interface{}{
			"clients":           counts.Clients,
			"instruments":       counts.Instruments,
			"market_snapshots":  counts.Snapshots,
			"historical_orders": counts.HistoricalOrders,
			"price_points":      counts.PricePoints,
		},
	}

	if d := h.store.Current(); d != nil {
		data["loaded"] = true
		data["loaded_at"] = d.LoadedAt.Format(time.RFC3339)
		data["age_seconds"] = int(time.Since(d.LoadedAt).Seconds())
	} else {
		data["loaded"] = false
	}

	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
