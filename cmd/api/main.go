package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/config"
	"github.com/otsyhq/otsy-backend/internal/handler"
	"github.com/otsyhq/otsy-backend/internal/middleware"
	"github.com/otsyhq/otsy-backend/internal/model/persona"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
	"github.com/otsyhq/otsy-backend/internal/service/ai"
	"github.com/otsyhq/otsy-backend/internal/service/booking"
	"github.com/otsyhq/otsy-backend/internal/service/community"
	"github.com/otsyhq/otsy-backend/internal/service/conversation"
	"github.com/otsyhq/otsy-backend/internal/service/journal"
	"github.com/otsyhq/otsy-backend/internal/service/mood"
	"github.com/otsyhq/otsy-backend/internal/service/onboarding"
	"github.com/otsyhq/otsy-backend/internal/service/session"
	"github.com/otsyhq/otsy-backend/internal/store"
	firestoreStore "github.com/otsyhq/otsy-backend/internal/store/firestore"
	"github.com/otsyhq/otsy-backend/internal/store/local"
	"github.com/otsyhq/otsy-backend/internal/store/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	localSink, err := local.Open(cfg.Storage.LocalDBPath)
	if err != nil {
		logger.Fatal("failed to open local database", zap.Error(err))
	}

	sinks := store.Dual{Local: localSink}
	var appointments store.AppointmentStore = memory.New()
	if cfg.Storage.GCPProject != "" {
		remote, err := firestoreStore.NewStore(ctx, cfg.Storage.GCPProject)
		if err != nil {
			logger.Warn("remote store unavailable, signed-in users fall back to local storage", zap.Error(err))
		} else {
			sinks.Remote = remote
			appointments = remote
			logger.Info("remote document store connected", zap.String("project", cfg.Storage.GCPProject))
		}
	} else {
		logger.Info("GCP_PROJECT not set, all sessions use local storage")
	}
	defer sinks.Close()

	personaStore := persona.NewMemoryStore(persona.Seed())
	sessionStore := session.NewStore(sinks, personaStore, logger)

	var replier conversation.Replier
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI, logger)
		if err != nil {
			logger.Warn("chat model unavailable, replies fall back to keyword rules", zap.Error(err))
		} else {
			replier = aiSvc
			logger.Info("chat model initialized")
		}
	} else {
		logger.Info("Ark credentials not configured, replies use keyword rules")
	}

	convSvc := conversation.NewService(sessionStore, personaStore, replier,
		conversation.Config{TypingDelay: cfg.Chat.TypingDelay}, logger)
	defer convSvc.Close()

	var verifier middleware.TokenVerifier
	if cfg.Server.AuthAudience != "" {
		verifier = middleware.NewGoogleVerifier(cfg.Server.AuthAudience)
	} else {
		logger.Info("AUTH_AUDIENCE not set, all callers treated as anonymous devices")
	}

	router := handler.NewRouter(handler.Deps{
		Personas:     personaStore,
		Conversation: convSvc,
		Onboarding:   onboarding.NewService(sinks, logger),
		Moods:        mood.NewService(sinks, logger),
		Journals:     journal.NewService(sinks, logger),
		Bookings:     booking.NewService(wellness.SeedTherapists(), appointments, logger),
		Community:    community.NewService(wellness.SeedPosts()),
		Verifier:     verifier,
		CORSOrigin:   cfg.Server.CORSOrigin,
		Logger:       logger,
	})

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("otsy backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
