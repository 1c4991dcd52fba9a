package elections

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers election routes. Role enforcement happens inside the
// handlers through the guard, so the management subtree stays safe even when
// reached through a path the edge gate could not classify.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listElections)
	r.Route("/manage", func(r chi.Router) {
		r.Get("/", h.listManaged)
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.createElection)
		r.Get("/{id}", h.showManageDetail)
		r.Post("/{id}", h.updateElection)
		r.Post("/{id}/candidates", h.addCandidate)
	})
	r.Get("/{id}", h.showElection)
}
