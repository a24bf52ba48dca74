package mood

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/middleware"
	"github.com/otsyhq/otsy-backend/internal/service/mood"
	"github.com/otsyhq/otsy-backend/pkg/utils"
)

// Handler serves the daily mood check-in and the weekly chart feed.
type Handler struct {
	moods  *mood.Service
	logger *zap.Logger
}

func New(moods *mood.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{moods: moods, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/moods", h.handleLog)
	r.Get("/moods/week", h.handleWeek)
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}

	var payload struct {
		Mood string `json:"mood"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Mood == "" {
		utils.RespondError(w, http.StatusBadRequest, "mood is required")
		return
	}

	entry, err := h.moods.Log(r.Context(), id, payload.Mood)
	if err != nil {
		h.logger.Error("mood log failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not save mood")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}

	week, err := h.moods.Week(r.Context(), id)
	if err != nil {
		h.logger.Error("mood week read failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not load mood history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, week)
}
