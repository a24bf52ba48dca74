// Package memory is an in-process Sink used by tests and by deployments
// that run without any configured backend.
package memory

import (
	"context"
	"sync"

	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
	"github.com/otsyhq/otsy-backend/internal/store"
)

type sessionKey struct {
	owner   string
	persona string
}

// Store keeps everything in maps guarded by one RWMutex.
type Store struct {
	mu           sync.RWMutex
	messages     map[sessionKey][]chat.Message
	moods        map[string][]wellness.MoodEntry
	journals     map[string][]wellness.JournalEntry
	profiles     map[string]wellness.Profile
	appointments map[string][]wellness.Appointment
}

func New() *Store {
	return &Store{
		messages:     make(map[sessionKey][]chat.Message),
		moods:        make(map[string][]wellness.MoodEntry),
		journals:     make(map[string][]wellness.JournalEntry),
		profiles:     make(map[string]wellness.Profile),
		appointments: make(map[string][]wellness.Appointment),
	}
}

func (s *Store) History(_ context.Context, ownerID, personaID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[sessionKey{ownerID, personaID}]
	copied := make([]chat.Message, len(msgs))
	copy(copied, msgs)
	chat.SortMessages(copied)
	return copied, nil
}

func (s *Store) AppendMessage(_ context.Context, ownerID, personaID string, msg chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey{ownerID, personaID}
	s.messages[key] = append(s.messages[key], msg)
	return nil
}

func (s *Store) ReplaceHistory(_ context.Context, ownerID, personaID string, msgs []chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[sessionKey{ownerID, personaID}] = append([]chat.Message(nil), msgs...)
	return nil
}

func (s *Store) SubscribeHistory(context.Context, string, string) (store.Subscription, error) {
	return nil, store.ErrNoSubscription
}

func (s *Store) AppendMood(_ context.Context, ownerID string, entry wellness.MoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moods[ownerID] = append(s.moods[ownerID], entry)
	return nil
}

func (s *Store) MoodHistory(_ context.Context, ownerID string, limit int) ([]wellness.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.moods[ownerID]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	copied := make([]wellness.MoodEntry, len(entries))
	copy(copied, entries)
	return copied, nil
}

func (s *Store) AppendJournal(_ context.Context, ownerID string, entry wellness.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journals[ownerID] = append(s.journals[ownerID], entry)
	return nil
}

func (s *Store) JournalEntries(_ context.Context, ownerID string) ([]wellness.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.journals[ownerID]
	// Newest first.
	out := make([]wellness.JournalEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (s *Store) DeleteJournal(_ context.Context, ownerID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.journals[ownerID]
	for i, e := range entries {
		if e.ID == entryID {
			s.journals[ownerID] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) SaveProfile(_ context.Context, ownerID string, profile wellness.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[ownerID] = profile
	return nil
}

func (s *Store) Profile(_ context.Context, ownerID string) (wellness.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[ownerID]
	return p, ok, nil
}

func (s *Store) CreateAppointment(_ context.Context, appt wellness.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[appt.UserID] = append(s.appointments[appt.UserID], appt)
	return nil
}

func (s *Store) AppointmentsByUser(_ context.Context, userID string) ([]wellness.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appts := s.appointments[userID]
	copied := make([]wellness.Appointment, len(appts))
	copy(copied, appts)
	return copied, nil
}

func (s *Store) Close() error { return nil }
