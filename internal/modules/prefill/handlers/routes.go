package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all prefill routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/recommend", h.HandleRecommend)
	r.Get("/recommendations", h.HandleListRecommendations)
}
