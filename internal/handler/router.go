package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	bookingHandler "github.com/otsyhq/otsy-backend/internal/handler/booking"
	chatHandler "github.com/otsyhq/otsy-backend/internal/handler/chat"
	communityHandler "github.com/otsyhq/otsy-backend/internal/handler/community"
	journalHandler "github.com/otsyhq/otsy-backend/internal/handler/journal"
	moodHandler "github.com/otsyhq/otsy-backend/internal/handler/mood"
	onboardingHandler "github.com/otsyhq/otsy-backend/internal/handler/onboarding"
	personaHandler "github.com/otsyhq/otsy-backend/internal/handler/persona"
	"github.com/otsyhq/otsy-backend/internal/middleware"
	personaModel "github.com/otsyhq/otsy-backend/internal/model/persona"
	"github.com/otsyhq/otsy-backend/internal/service/booking"
	"github.com/otsyhq/otsy-backend/internal/service/community"
	"github.com/otsyhq/otsy-backend/internal/service/conversation"
	"github.com/otsyhq/otsy-backend/internal/service/journal"
	"github.com/otsyhq/otsy-backend/internal/service/mood"
	"github.com/otsyhq/otsy-backend/internal/service/onboarding"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Personas     personaModel.Store
	Conversation *conversation.Service
	Onboarding   *onboarding.Service
	Moods        *mood.Service
	Journals     *journal.Service
	Bookings     *booking.Service
	Community    *community.Service

	Verifier   middleware.TokenVerifier
	CORSOrigin string
	Logger     *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(deps.CORSOrigin))
	r.Use(middleware.Identity(deps.Verifier, deps.Logger))

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(deps.Personas).RegisterRoutes(api)
		chatHandler.New(deps.Conversation, deps.Logger).RegisterRoutes(api)
		onboardingHandler.New(deps.Onboarding, deps.Logger).RegisterRoutes(api)
		moodHandler.New(deps.Moods, deps.Logger).RegisterRoutes(api)
		journalHandler.New(deps.Journals, deps.Logger).RegisterRoutes(api)
		bookingHandler.New(deps.Bookings, deps.Logger).RegisterRoutes(api)
		communityHandler.New(deps.Community, deps.Logger).RegisterRoutes(api)
	})

	return r
}
