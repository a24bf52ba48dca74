// Package store defines the persistence boundary. A Sink is one storage
// backend (the remote document store or the device-local database); Dual
// picks between them from the identity kind in a single place.
package store

import (
	"context"
	"errors"

	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNoSubscription = errors.New("sink does not support subscriptions")
)

// Subscription delivers transcript snapshots as the backing document
// changes. Close releases the watch; Events is closed afterwards.
type Subscription interface {
	Events() <-chan []chat.Message
	Close()
}

// Sink persists per-owner documents on one storage backend. The owner key is
// the authenticated user id or the anonymous device key; callers never mix
// the two on a single sink.
type Sink interface {
	History(ctx context.Context, ownerID, personaID string) ([]chat.Message, error)
	AppendMessage(ctx context.Context, ownerID, personaID string, msg chat.Message) error
	// ReplaceHistory overwrites the transcript wholesale. Used by greeting
	// seeding and by clear-history, never by normal sends.
	ReplaceHistory(ctx context.Context, ownerID, personaID string, msgs []chat.Message) error
	// SubscribeHistory watches the transcript for external writes. Sinks
	// without push support return ErrNoSubscription; callers then re-read
	// after their own writes.
	SubscribeHistory(ctx context.Context, ownerID, personaID string) (Subscription, error)

	AppendMood(ctx context.Context, ownerID string, entry wellness.MoodEntry) error
	MoodHistory(ctx context.Context, ownerID string, limit int) ([]wellness.MoodEntry, error)

	AppendJournal(ctx context.Context, ownerID string, entry wellness.JournalEntry) error
	JournalEntries(ctx context.Context, ownerID string) ([]wellness.JournalEntry, error)
	DeleteJournal(ctx context.Context, ownerID, entryID string) error

	SaveProfile(ctx context.Context, ownerID string, profile wellness.Profile) error
	Profile(ctx context.Context, ownerID string) (wellness.Profile, bool, error)

	Close() error
}

// AppointmentStore persists marketplace bookings. Booking requires a signed
// in user, so only the remote store and the in-memory test double implement
// it.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, appt wellness.Appointment) error
	AppointmentsByUser(ctx context.Context, userID string) ([]wellness.Appointment, error)
}

// Dual routes every read and write to the sink matching the identity kind:
// authenticated owners to the remote store, anonymous owners to the local
// one. A session's messages are never split across both; the identity kind
// at write time determines the single destination.
type Dual struct {
	Remote Sink // nil when the remote store is not configured
	Local  Sink
}

// For returns the sink backing the given identity.
func (d Dual) For(id identity.Identity) Sink {
	if id.IsAuthenticated() && d.Remote != nil {
		return d.Remote
	}
	return d.Local
}

// Close closes both sinks, preferring the first error.
func (d Dual) Close() error {
	var firstErr error
	if d.Remote != nil {
		firstErr = d.Remote.Close()
	}
	if d.Local != nil {
		if err := d.Local.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
