// Package journal manages private journal entries, including the delete
// path the "burn letter" exercise depends on.
package journal

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

var ErrEmptyBody = errors.New("journal body is required")

type Service struct {
	sinks  store.Dual
	logger *zap.Logger
	now    func() time.Time
}

func NewService(sinks store.Dual, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sinks: sinks, logger: logger, now: time.Now}
}

func (s *Service) Append(ctx context.Context, id identity.Identity, title, body, mood string) (wellness.JournalEntry, error) {
	if strings.TrimSpace(body) == "" {
		return wellness.JournalEntry{}, ErrEmptyBody
	}

	entry := wellness.JournalEntry{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Body:      body,
		Mood:      strings.ToLower(strings.TrimSpace(mood)),
		CreatedAt: s.now().UTC(),
	}
	if err := s.sinks.For(id).AppendJournal(ctx, id.ID(), entry); err != nil {
		return wellness.JournalEntry{}, err
	}
	return entry, nil
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context, id identity.Identity) ([]wellness.JournalEntry, error) {
	return s.sinks.For(id).JournalEntries(ctx, id.ID())
}

// Delete removes one entry for good. Returns store.ErrNotFound for unknown
// ids.
func (s *Service) Delete(ctx context.Context, id identity.Identity, entryID string) error {
	if err := s.sinks.For(id).DeleteJournal(ctx, id.ID(), entryID); err != nil {
		return err
	}
	s.logger.Debug("journal entry burned", zap.String("entry", entryID))
	return nil
}
