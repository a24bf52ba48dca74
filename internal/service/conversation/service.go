// Package conversation drives each chat session's turn loop: user message
// in, a simulated "thinking" pause, companion message out.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/analysis/reply"
	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/persona"
	"github.com/otsyhq/otsy-backend/internal/service/session"
	"github.com/otsyhq/otsy-backend/internal/store"
)

var (
	ErrEmptyMessage  = errors.New("message text is required")
	ErrReplyPending  = errors.New("companion is already replying")
	ErrSessionClosed = errors.New("session closed")
)

// DefaultTypingDelay is the artificial pause before the companion answers.
// It simulates thinking; the classifier itself is instant.
const DefaultTypingDelay = 1500 * time.Millisecond

const (
	writeTimeout        = 10 * time.Second
	defaultReplyTimeout = 15 * time.Second
)

// Replier produces a companion reply from an external model. When it is
// absent or fails, the keyword classifier answers instead.
type Replier interface {
	Reply(ctx context.Context, p persona.Persona, history []chat.Message, userText string) (string, error)
}

// Config tunes the controller. Zero values fall back to defaults.
type Config struct {
	TypingDelay  time.Duration
	ReplyTimeout time.Duration
}

// Service runs one state machine per live session: Idle, then AwaitingReply
// while the typing delay runs, then Idle again. All persistence flows
// through a per-session ordered write queue, so message order never depends
// on racing goroutines' timestamps.
type Service struct {
	sessions *session.Store
	personas persona.Store
	replier  Replier
	logger   *zap.Logger
	now      func() time.Time

	typingDelay  time.Duration
	replyTimeout time.Duration

	mu     sync.Mutex
	live   map[string]*liveSession
	closed bool
}

func NewService(sessions *session.Store, personas persona.Store, replier Replier, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TypingDelay <= 0 {
		cfg.TypingDelay = DefaultTypingDelay
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = defaultReplyTimeout
	}
	return &Service{
		sessions:     sessions,
		personas:     personas,
		replier:      replier,
		logger:       logger,
		now:          time.Now,
		typingDelay:  cfg.TypingDelay,
		replyTimeout: cfg.ReplyTimeout,
		live:         make(map[string]*liveSession),
	}
}

// History loads the transcript, seeding the greeting on first contact.
func (s *Service) History(ctx context.Context, id identity.Identity, personaID string) ([]chat.Message, error) {
	p := s.personas.Resolve(personaID)
	return s.sessions.Load(ctx, id, p.ID)
}

// Submit accepts one user message and schedules the companion's reply.
// Empty or whitespace-only text is rejected without any state change, and a
// submit while the companion "is typing" is rejected rather than queued:
// input stays disabled for the duration of one turn.
//
// The user's message is persisted before Submit returns; a failed write
// surfaces here so the client can retry it. Only the bot's own reply is
// allowed to degrade to display-only.
func (s *Service) Submit(ctx context.Context, id identity.Identity, personaID, text string) (chat.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	p := s.personas.Resolve(personaID)
	ls, err := s.session(ctx, id, p.ID)
	if err != nil {
		return chat.Message{}, err
	}

	ls.mu.Lock()
	if ls.awaiting {
		ls.mu.Unlock()
		return chat.Message{}, ErrReplyPending
	}
	ls.awaiting = true
	ls.mu.Unlock()

	userMsg := chat.Message{
		ID:        uuid.NewString(),
		Text:      trimmed,
		Sender:    chat.SenderUser,
		PersonaID: p.ID,
		CreatedAt: s.now().UTC(),
	}

	if err := ls.enqueueWait(userMsg); err != nil {
		ls.setIdle()
		return chat.Message{}, fmt.Errorf("persist user message: %w", err)
	}

	ls.broadcast(Event{Type: EventMessage, Message: &userMsg})
	ls.broadcast(Event{Type: EventTyping, Typing: true})

	// A Clear that slipped in while the write was in flight already reset
	// awaiting; in that case the turn is over and no reply gets scheduled.
	ls.mu.Lock()
	if ls.awaiting {
		ls.timer = time.AfterFunc(s.typingDelay, func() {
			s.deliverReply(ls, p, trimmed)
		})
	}
	ls.mu.Unlock()

	return userMsg, nil
}

// Clear wipes the transcript down to a single fresh bot message and cancels
// any pending reply. Clearing an already-cleared session yields the same
// single-message shape again.
func (s *Service) Clear(ctx context.Context, id identity.Identity, personaID string) (chat.Message, error) {
	p := s.personas.Resolve(personaID)
	ls, err := s.session(ctx, id, p.ID)
	if err != nil {
		return chat.Message{}, err
	}

	ls.mu.Lock()
	if ls.timer != nil {
		ls.timer.Stop()
		ls.timer = nil
	}
	ls.awaiting = false
	ls.mu.Unlock()

	reset, err := s.sessions.Clear(ctx, id, p.ID)
	if err != nil {
		return chat.Message{}, err
	}
	ls.resetSeen(reset.ID)

	ls.broadcast(Event{Type: EventTyping, Typing: false})
	ls.broadcast(Event{Type: EventCleared, Message: &reset})
	return reset, nil
}

// Subscribe attaches a listener to the session's event feed. The returned
// cancel func detaches it and must be called when the consumer goes away.
func (s *Service) Subscribe(ctx context.Context, id identity.Identity, personaID string) (<-chan Event, func(), error) {
	p := s.personas.Resolve(personaID)
	ls, err := s.session(ctx, id, p.ID)
	if err != nil {
		return nil, nil, err
	}
	return ls.subscribe()
}

// Teardown disposes a session's live state: the pending timer is cancelled
// so nothing fires into a dead session, subscribers are closed, and the
// write queue drains out. The persisted transcript is untouched.
func (s *Service) Teardown(id identity.Identity, personaID string) {
	p := s.personas.Resolve(personaID)
	key := liveKey(id, p.ID)

	s.mu.Lock()
	ls, ok := s.live[key]
	if ok {
		delete(s.live, key)
	}
	s.mu.Unlock()

	if ok {
		ls.close()
	}
}

// Close tears down every live session. Called at server shutdown.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	sessions := make([]*liveSession, 0, len(s.live))
	for _, ls := range s.live {
		sessions = append(sessions, ls)
	}
	s.live = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, ls := range sessions {
		ls.close()
	}
}

func (s *Service) deliverReply(ls *liveSession, p persona.Persona, userText string) {
	ls.mu.Lock()
	if !ls.awaiting || ls.closed {
		ls.mu.Unlock()
		return
	}
	ls.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.replyTimeout)
	defer cancel()

	botMsg := chat.Message{
		ID:        uuid.NewString(),
		Text:      s.composeReply(ctx, ls, p, userText),
		Sender:    chat.SenderBot,
		PersonaID: p.ID,
		CreatedAt: s.now().UTC(),
	}

	if err := ls.enqueueWait(botMsg); err != nil {
		// The reply still reaches subscribers; it just may not survive a
		// reload. Never block the conversation on the bot's own message.
		botMsg.Unsynced = true
		s.logger.Warn("companion message not persisted",
			zap.String("persona", p.ID), zap.Error(err))
	}

	ls.setIdle()
	ls.broadcast(Event{Type: EventTyping, Typing: false})
	ls.broadcast(Event{Type: EventMessage, Message: &botMsg})
}

func (s *Service) composeReply(ctx context.Context, ls *liveSession, p persona.Persona, userText string) string {
	if s.replier != nil {
		history, err := s.sessions.Load(ctx, ls.id, p.ID)
		if err != nil {
			s.logger.Warn("history unavailable for model reply", zap.Error(err))
			history = nil
		}
		// The current turn's user message is already persisted; drop it from
		// the history so the model sees it only once, as the query.
		if n := len(history); n > 0 && history[n-1].Sender == chat.SenderUser && history[n-1].Text == userText {
			history = history[:n-1]
		}
		text, err := s.replier.Reply(ctx, p, history, userText)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			s.logger.Warn("model reply failed, using rule classifier",
				zap.String("persona", p.ID), zap.Error(err))
		}
	}
	return reply.Classify(userText, p)
}

func liveKey(id identity.Identity, personaID string) string {
	return string(id.Kind()) + ":" + id.ID() + ":" + personaID
}

func (s *Service) session(_ context.Context, id identity.Identity, personaID string) (*liveSession, error) {
	key := liveKey(id, personaID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if ls, ok := s.live[key]; ok {
		return ls, nil
	}

	ls := &liveSession{
		svc:       s,
		id:        id,
		personaID: personaID,
		writes:    make(chan writeOp, 16),
		quit:      make(chan struct{}),
		subs:      make(map[int]chan Event),
		seen:      make(map[string]struct{}),
	}
	go ls.runWrites()

	// Sinks that can watch the transcript feed remote writes into the live
	// session, so another client of the same account shows up here too. The
	// watch outlives the request that created the session.
	sub, err := s.sessions.Subscribe(context.Background(), id, personaID)
	switch {
	case err == nil && sub != nil:
		ls.remote = sub
		go ls.runRemoteFeed(sub)
	case err != nil && !errors.Is(err, store.ErrNoSubscription):
		s.logger.Warn("session watch unavailable",
			zap.String("persona", personaID), zap.Error(err))
	}

	s.live[key] = ls
	return ls, nil
}
