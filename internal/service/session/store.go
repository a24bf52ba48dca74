// Package session round-trips transcripts to whichever sink the active
// identity selects and owns the greeting lifecycle.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/persona"
	"github.com/otsyhq/otsy-backend/internal/store"
)

// Store layers session semantics over the raw sinks: lazy greeting seeding,
// clear-with-reset, and subscription passthrough.
type Store struct {
	sinks    store.Dual
	personas persona.Store
	logger   *zap.Logger
	now      func() time.Time

	// seeds collapses concurrent first loads of the same session so the
	// greeting is only ever written once.
	seeds singleflight.Group
}

func NewStore(sinks store.Dual, personas persona.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sinks:    sinks,
		personas: personas,
		logger:   logger,
		now:      time.Now,
	}
}

func sessionKey(id identity.Identity, personaID string) string {
	return string(id.Kind()) + ":" + id.ID() + ":" + personaID
}

// Load returns the ordered transcript, seeding a single greeting message on
// the first load of an empty session. Seeding persists before returning, so
// repeated loads are idempotent: a non-empty session is never re-seeded.
func (s *Store) Load(ctx context.Context, id identity.Identity, personaID string) ([]chat.Message, error) {
	sink := s.sinks.For(id)
	msgs, err := sink.History(ctx, id.ID(), personaID)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		chat.SortMessages(msgs)
		return msgs, nil
	}

	seeded, err, _ := s.seeds.Do(sessionKey(id, personaID), func() (any, error) {
		// Re-check under the flight: another tab may have seeded while we
		// were queued.
		existing, err := sink.History(ctx, id.ID(), personaID)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return existing, nil
		}
		greeting := s.greetingMessage(id, personaID)
		if err := sink.ReplaceHistory(ctx, id.ID(), personaID, []chat.Message{greeting}); err != nil {
			return nil, fmt.Errorf("seed greeting: %w", err)
		}
		s.logger.Debug("seeded session greeting",
			zap.String("identity", string(id.Kind())),
			zap.String("persona", personaID))
		return []chat.Message{greeting}, nil
	})
	if err != nil {
		return nil, err
	}
	msgs = seeded.([]chat.Message)
	chat.SortMessages(msgs)
	return msgs, nil
}

// Append writes one message to the session's single sink.
func (s *Store) Append(ctx context.Context, id identity.Identity, personaID string, msg chat.Message) error {
	return s.sinks.For(id).AppendMessage(ctx, id.ID(), personaID, msg)
}

// Clear replaces the transcript with a single bot reset message and returns
// it. Clearing twice leaves exactly one message each time.
func (s *Store) Clear(ctx context.Context, id identity.Identity, personaID string) (chat.Message, error) {
	p := s.personas.Resolve(personaID)
	reset := chat.Message{
		ID:        uuid.NewString(),
		Text:      p.ClearedLine,
		Sender:    chat.SenderBot,
		PersonaID: p.ID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.sinks.For(id).ReplaceHistory(ctx, id.ID(), personaID, []chat.Message{reset}); err != nil {
		return chat.Message{}, err
	}
	return reset, nil
}

// Subscribe watches for external writes to the session. Only the remote sink
// pushes changes; for the local sink this returns store.ErrNoSubscription
// and callers re-read after each write instead.
func (s *Store) Subscribe(ctx context.Context, id identity.Identity, personaID string) (store.Subscription, error) {
	return s.sinks.For(id).SubscribeHistory(ctx, id.ID(), personaID)
}

func (s *Store) greetingMessage(id identity.Identity, personaID string) chat.Message {
	p := s.personas.Resolve(personaID)
	text := p.Greeting
	if !id.IsAuthenticated() && p.GuestGreeting != "" {
		text = p.GuestGreeting
	}
	return chat.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    chat.SenderBot,
		PersonaID: p.ID,
		CreatedAt: s.now().UTC(),
	}
}
