package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all reference data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/refdata", func(r chi.Router) {
		r.Get("/status", h.HandleGetStatus)
	})
}
