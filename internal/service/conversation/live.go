package conversation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/store"
)

// EventType labels entries on a session's live feed.
type EventType string

const (
	EventMessage EventType = "message"
	EventTyping  EventType = "typing"
	EventCleared EventType = "cleared"
)

// Event is one item on a session's live feed, consumed by the websocket and
// SSE handlers.
type Event struct {
	Type    EventType     `json:"type"`
	Message *chat.Message `json:"message,omitempty"`
	Typing  bool          `json:"typing"`
}

type writeOp struct {
	msg    chat.Message
	result chan error
}

// liveSession is the in-memory state for one (identity, persona) pair: the
// typing flag, the pending reply timer, the subscriber set, and the ordered
// write queue.
type liveSession struct {
	svc       *Service
	id        identity.Identity
	personaID string

	writes chan writeOp
	quit   chan struct{}
	remote store.Subscription

	mu       sync.Mutex
	awaiting bool
	timer    *time.Timer
	subs     map[int]chan Event
	nextSub  int
	closed   bool
	seen     map[string]struct{}
	primed   bool
}

// runWrites is the session's single writer. One goroutine per live session
// applies appends in submission order, so transcript order never depends on
// which of two racing writes lands first.
func (ls *liveSession) runWrites() {
	for {
		select {
		case op := <-ls.writes:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := ls.svc.sessions.Append(ctx, ls.id, ls.personaID, op.msg)
			cancel()
			if err == nil {
				// Seen before the result is reported, so the sink's own
				// snapshot of this write never echoes back onto the feed.
				ls.markSeen(op.msg.ID)
			}
			op.result <- err
		case <-ls.quit:
			// Drain anything already queued so no result channel hangs.
			for {
				select {
				case op := <-ls.writes:
					op.result <- ErrSessionClosed
				default:
					return
				}
			}
		}
	}
}

// enqueueWait queues one append and blocks until the sink accepts or
// rejects it.
func (ls *liveSession) enqueueWait(msg chat.Message) error {
	op := writeOp{msg: msg, result: make(chan error, 1)}
	select {
	case ls.writes <- op:
	case <-ls.quit:
		return ErrSessionClosed
	}
	select {
	case err := <-op.result:
		return err
	case <-ls.quit:
		return ErrSessionClosed
	}
}

func (ls *liveSession) markSeen(id string) {
	ls.mu.Lock()
	ls.seen[id] = struct{}{}
	ls.mu.Unlock()
}

// resetSeen rebases the seen set after a local clear so the next snapshot
// from the sink is not mistaken for a remote wipe.
func (ls *liveSession) resetSeen(id string) {
	ls.mu.Lock()
	ls.seen = map[string]struct{}{id: {}}
	ls.primed = true
	ls.mu.Unlock()
}

// runRemoteFeed forwards sink snapshots onto the live feed. The first
// snapshot only establishes the baseline; after that, messages written by
// another client of the same account surface here as message events, and a
// shrinking transcript surfaces as a cleared event.
func (ls *liveSession) runRemoteFeed(sub store.Subscription) {
	for msgs := range sub.Events() {
		ls.applySnapshot(msgs)
	}
}

func (ls *liveSession) applySnapshot(msgs []chat.Message) {
	ls.mu.Lock()
	if ls.closed {
		ls.mu.Unlock()
		return
	}
	if !ls.primed {
		ls.primed = true
		for _, m := range msgs {
			ls.seen[m.ID] = struct{}{}
		}
		ls.mu.Unlock()
		return
	}
	shrunk := len(msgs) < len(ls.seen)
	if shrunk {
		ls.seen = make(map[string]struct{}, len(msgs))
	}
	var fresh []chat.Message
	for _, m := range msgs {
		if _, ok := ls.seen[m.ID]; ok {
			continue
		}
		ls.seen[m.ID] = struct{}{}
		if !shrunk {
			fresh = append(fresh, m)
		}
	}
	ls.mu.Unlock()

	if shrunk {
		var reset *chat.Message
		if n := len(msgs); n > 0 {
			reset = &msgs[n-1]
		}
		ls.broadcast(Event{Type: EventCleared, Message: reset})
		return
	}
	for i := range fresh {
		ls.broadcast(Event{Type: EventMessage, Message: &fresh[i]})
	}
}

func (ls *liveSession) setIdle() {
	ls.mu.Lock()
	ls.awaiting = false
	ls.timer = nil
	ls.mu.Unlock()
}

func (ls *liveSession) subscribe() (<-chan Event, func(), error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed {
		return nil, nil, ErrSessionClosed
	}

	ch := make(chan Event, 16)
	token := ls.nextSub
	ls.nextSub++
	ls.subs[token] = ch

	cancel := func() {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		if sub, ok := ls.subs[token]; ok {
			delete(ls.subs, token)
			close(sub)
		}
	}
	return ch, cancel, nil
}

func (ls *liveSession) broadcast(ev Event) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for token, sub := range ls.subs {
		select {
		case sub <- ev:
		default:
			// Slow consumer; dropping beats stalling the conversation.
			ls.svc.logger.Debug("dropping event for slow subscriber",
				zap.Int("subscriber", token), zap.String("event", string(ev.Type)))
		}
	}
}

func (ls *liveSession) close() {
	ls.mu.Lock()
	if ls.closed {
		ls.mu.Unlock()
		return
	}
	ls.closed = true
	if ls.timer != nil {
		ls.timer.Stop()
		ls.timer = nil
	}
	ls.awaiting = false
	subs := ls.subs
	ls.subs = make(map[int]chan Event)
	ls.mu.Unlock()

	close(ls.quit)
	if ls.remote != nil {
		ls.remote.Close()
	}
	for _, sub := range subs {
		close(sub)
	}
}
