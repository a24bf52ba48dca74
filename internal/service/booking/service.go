// Package booking serves the therapist marketplace: directory search and
// appointment creation.
package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
	"github.com/otsyhq/otsy-backend/internal/store"
)

var (
	ErrLoginRequired     = errors.New("booking requires a signed-in user")
	ErrTherapistNotFound = errors.New("therapist not found")
	ErrMissingSchedule   = errors.New("date and time are required")
)

type Service struct {
	therapists   []wellness.Therapist
	appointments store.AppointmentStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(therapists []wellness.Therapist, appointments store.AppointmentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		therapists:   append([]wellness.Therapist(nil), therapists...),
		appointments: appointments,
		logger:       logger,
		now:          time.Now,
	}
}

// Search filters the directory by name or specialty, case-insensitive. An
// empty term returns everyone.
func (s *Service) Search(term string) []wellness.Therapist {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]wellness.Therapist(nil), s.therapists...)
	}

	var out []wellness.Therapist
	for _, t := range s.therapists {
		if strings.Contains(strings.ToLower(t.Name), term) ||
			strings.Contains(strings.ToLower(t.Specialty), term) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) FindByID(id string) (wellness.Therapist, bool) {
	for _, t := range s.therapists {
		if t.ID == id {
			return t, true
		}
	}
	return wellness.Therapist{}, false
}

// Book confirms an appointment for a signed-in user. Guests are rejected;
// the client sends them to the login screen instead.
func (s *Service) Book(ctx context.Context, id identity.Identity, therapistID, date, slot string) (wellness.Appointment, error) {
	if !id.IsAuthenticated() {
		return wellness.Appointment{}, ErrLoginRequired
	}
	if strings.TrimSpace(date) == "" || strings.TrimSpace(slot) == "" {
		return wellness.Appointment{}, ErrMissingSchedule
	}

	therapist, ok := s.FindByID(therapistID)
	if !ok {
		return wellness.Appointment{}, ErrTherapistNotFound
	}

	appt := wellness.Appointment{
		ID:          uuid.NewString(),
		UserID:      id.ID(),
		TherapistID: therapist.ID,
		Therapist:   therapist.Name,
		Specialty:   therapist.Specialty,
		Date:        strings.TrimSpace(date),
		Time:        strings.TrimSpace(slot),
		Status:      wellness.AppointmentConfirmed,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.appointments.CreateAppointment(ctx, appt); err != nil {
		return wellness.Appointment{}, err
	}

	s.logger.Info("appointment booked",
		zap.String("therapist", therapist.ID), zap.String("date", appt.Date))
	return appt, nil
}

// ListByUser returns a signed-in user's appointments, newest first.
func (s *Service) ListByUser(ctx context.Context, id identity.Identity) ([]wellness.Appointment, error) {
	if !id.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	return s.appointments.AppointmentsByUser(ctx, id.ID())
}
