package onboarding

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/middleware"
	"github.com/otsyhq/otsy-backend/internal/service/onboarding"
	"github.com/otsyhq/otsy-backend/pkg/utils"
)

// Handler drives the intake interview over HTTP.
type Handler struct {
	flows  *onboarding.Service
	logger *zap.Logger
}

func New(flows *onboarding.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{flows: flows, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/onboarding/flows", h.handleStart)
	r.Post("/onboarding/flows/{flowID}/answer", h.handleAnswer)
	r.Post("/onboarding/flows/{flowID}/skip", h.handleSkip)
	r.Get("/onboarding/profile", h.handleProfile)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, h.flows.Start(r.Context(), id))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.flows.Advance(r.Context(), chi.URLParam(r, "flowID"), payload.Answer)
	if err != nil {
		h.respondFlowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleSkip(w http.ResponseWriter, r *http.Request) {
	state, err := h.flows.Skip(r.Context(), chi.URLParam(r, "flowID"))
	if err != nil {
		h.respondFlowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}

	profile, found, err := h.flows.Profile(r.Context(), id)
	if err != nil {
		h.logger.Error("profile read failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not load profile")
		return
	}
	if !found {
		utils.RespondError(w, http.StatusNotFound, "no intake profile yet")
		return
	}
	utils.RespondJSON(w, http.StatusOK, profile)
}

func (h *Handler) respondFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, onboarding.ErrFlowNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, onboarding.ErrEmptyAnswer), errors.Is(err, onboarding.ErrNotSkippable):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, onboarding.ErrFlowFinished):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("onboarding step failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not advance onboarding")
	}
}
