package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/middleware"
	"github.com/otsyhq/otsy-backend/internal/service/booking"
	"github.com/otsyhq/otsy-backend/pkg/utils"
)

// Handler serves the therapist directory and appointment booking.
type Handler struct {
	bookings *booking.Service
	logger   *zap.Logger
}

func New(bookings *booking.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{bookings: bookings, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/therapists", h.handleSearch)
	r.Post("/appointments", h.handleBook)
	r.Get("/appointments", h.handleList)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.bookings.Search(r.URL.Query().Get("q")))
}

func (h *Handler) handleBook(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}

	var payload struct {
		TherapistID string `json:"therapistId"`
		Date        string `json:"date"`
		Time        string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := h.bookings.Book(r.Context(), id, payload.TherapistID, payload.Date, payload.Time)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrLoginRequired):
			utils.RespondError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, booking.ErrTherapistNotFound):
			utils.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, booking.ErrMissingSchedule):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("booking failed", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "could not book appointment")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, appt)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return
	}

	appts, err := h.bookings.ListByUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrLoginRequired) {
			utils.RespondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("appointment list failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not load appointments")
		return
	}

	utils.RespondJSON(w, http.StatusOK, appts)
}
