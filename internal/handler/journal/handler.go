package journal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/middleware"
	"github.com/otsyhq/otsy-backend/internal/service/journal"
	"github.com/otsyhq/otsy-backend/internal/store"
	"github.com/otsyhq/otsy-backend/pkg/utils"
)

// Handler serves the private journal.
type Handler struct {
	journals *journal.Service
	logger   *zap.Logger
}

func New(journals *journal.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{journals: journals, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/journal/entries", h.handleList)
	r.Post("/journal/entries", h.handleCreate)
	r.Delete("/journal/entries/{entryID}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}

	entries, err := h.journals.List(r.Context(), id)
	if err != nil {
		h.logger.Error("journal list failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not load journal")
		return
	}
	utils.RespondJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}

	var payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Mood  string `json:"mood"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.journals.Append(r.Context(), id, payload.Title, payload.Body, payload.Mood)
	if err != nil {
		if errors.Is(err, journal.ErrEmptyBody) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("journal append failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not save entry")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}

	if err := h.journals.Delete(r.Context(), id, chi.URLParam(r, "entryID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "entry not found")
			return
		}
		h.logger.Error("journal delete failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not delete entry")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
