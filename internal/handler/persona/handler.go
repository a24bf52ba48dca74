package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otsyhq/otsy-backend/internal/model/persona"
	"github.com/otsyhq/otsy-backend/pkg/utils"
)

// Handler serves the companion roster.
type Handler struct {
	personas persona.Store
}

func New(personas persona.Store) *Handler {
	return &Handler{personas: personas}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
