// Package firestore is the remote Sink backing authenticated identities.
// Transcripts live in one document per (user, persona) pair with an
// append-only history array, so concurrent writers add rather than clobber.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
	"github.com/otsyhq/otsy-backend/internal/store"
)

type Store struct {
	client *firestore.Client
}

// NewStore connects to Firestore in the given GCP project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for the firestore store")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) chatDoc(ownerID, personaID string) *firestore.DocumentRef {
	return s.client.Collection("chats").Doc(ownerID + "__" + personaID)
}

func (s *Store) moodCol() *firestore.CollectionRef {
	return s.client.Collection("mood_logs")
}

func (s *Store) journalCol(ownerID string) *firestore.CollectionRef {
	return s.client.Collection("journals").Doc(ownerID).Collection("entries")
}

func (s *Store) profileDoc(ownerID string) *firestore.DocumentRef {
	return s.client.Collection("profiles").Doc(ownerID)
}

func (s *Store) appointmentCol() *firestore.CollectionRef {
	return s.client.Collection("appointments")
}

type messageDoc struct {
	ID        string    `firestore:"id"`
	Text      string    `firestore:"text"`
	Sender    string    `firestore:"sender"`
	PersonaID string    `firestore:"persona_id"`
	CreatedAt time.Time `firestore:"created_at"`
}

type chatDoc struct {
	History []messageDoc `firestore:"history"`
}

type moodDoc struct {
	UserID    string    `firestore:"uid"`
	Mood      string    `firestore:"mood"`
	Level     int       `firestore:"level"`
	Day       string    `firestore:"day"`
	CreatedAt time.Time `firestore:"created_at"`
}

type journalDoc struct {
	Title     string    `firestore:"title"`
	Body      string    `firestore:"body"`
	Mood      string    `firestore:"mood"`
	CreatedAt time.Time `firestore:"created_at"`
}

type appointmentDoc struct {
	UserID      string    `firestore:"user_id"`
	TherapistID string    `firestore:"therapist_id"`
	Therapist   string    `firestore:"therapist_name"`
	Specialty   string    `firestore:"specialty"`
	Date        string    `firestore:"date"`
	Time        string    `firestore:"time"`
	Status      string    `firestore:"status"`
	CreatedAt   time.Time `firestore:"created_at"`
}

func toMessageDoc(msg chat.Message) messageDoc {
	return messageDoc{
		ID:        msg.ID,
		Text:      msg.Text,
		Sender:    string(msg.Sender),
		PersonaID: msg.PersonaID,
		CreatedAt: msg.CreatedAt,
	}
}

func fromMessageDocs(docs []messageDoc) []chat.Message {
	msgs := make([]chat.Message, 0, len(docs))
	for _, d := range docs {
		msgs = append(msgs, chat.Message{
			ID:        d.ID,
			Text:      d.Text,
			Sender:    chat.Sender(d.Sender),
			PersonaID: d.PersonaID,
			CreatedAt: d.CreatedAt,
		})
	}
	chat.SortMessages(msgs)
	return msgs
}

func (s *Store) History(ctx context.Context, ownerID, personaID string) ([]chat.Message, error) {
	snap, err := s.chatDoc(ownerID, personaID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore History: %w", err)
	}
	var doc chatDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore History decode: %w", err)
	}
	return fromMessageDocs(doc.History), nil
}

func (s *Store) AppendMessage(ctx context.Context, ownerID, personaID string, msg chat.Message) error {
	ref := s.chatDoc(ownerID, personaID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "history", Value: firestore.ArrayUnion(toMessageDoc(msg))},
	})
	if status.Code(err) == codes.NotFound {
		// First write for this session document.
		_, err = ref.Set(ctx, chatDoc{History: []messageDoc{toMessageDoc(msg)}})
	}
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) ReplaceHistory(ctx context.Context, ownerID, personaID string, msgs []chat.Message) error {
	docs := make([]messageDoc, 0, len(msgs))
	for _, msg := range msgs {
		docs = append(docs, toMessageDoc(msg))
	}
	if _, err := s.chatDoc(ownerID, personaID).Set(ctx, chatDoc{History: docs}); err != nil {
		return fmt.Errorf("firestore ReplaceHistory: %w", err)
	}
	return nil
}

type snapshotSubscription struct {
	cancel context.CancelFunc
	events chan []chat.Message
}

func (s *snapshotSubscription) Events() <-chan []chat.Message { return s.events }

func (s *snapshotSubscription) Close() { s.cancel() }

// SubscribeHistory mirrors the document's snapshot listener: each change to
// the transcript document delivers the full resorted history.
func (s *Store) SubscribeHistory(ctx context.Context, ownerID, personaID string) (store.Subscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	sub := &snapshotSubscription{
		cancel: cancel,
		events: make(chan []chat.Message, 1),
	}

	go func() {
		defer close(sub.events)
		iter := s.chatDoc(ownerID, personaID).Snapshots(watchCtx)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				return
			}
			if !snap.Exists() {
				continue
			}
			var doc chatDoc
			if err := snap.DataTo(&doc); err != nil {
				continue
			}
			select {
			case sub.events <- fromMessageDocs(doc.History):
			case <-watchCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}

func (s *Store) AppendMood(ctx context.Context, ownerID string, entry wellness.MoodEntry) error {
	doc := moodDoc{
		UserID:    ownerID,
		Mood:      entry.Mood,
		Level:     entry.Level,
		Day:       entry.Day,
		CreatedAt: entry.CreatedAt,
	}
	if _, err := s.moodCol().Doc(entry.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMood: %w", err)
	}
	return nil
}

func (s *Store) MoodHistory(ctx context.Context, ownerID string, limit int) ([]wellness.MoodEntry, error) {
	q := s.moodCol().Where("uid", "==", ownerID).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var newestFirst []wellness.MoodEntry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore MoodHistory: %w", err)
		}
		var doc moodDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode moodDoc: %w", err)
		}
		newestFirst = append(newestFirst, wellness.MoodEntry{
			ID:        snap.Ref.ID,
			Mood:      doc.Mood,
			Level:     doc.Level,
			Day:       doc.Day,
			CreatedAt: doc.CreatedAt,
		})
	}
	out := make([]wellness.MoodEntry, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		out = append(out, newestFirst[i])
	}
	return out, nil
}

func (s *Store) AppendJournal(ctx context.Context, ownerID string, entry wellness.JournalEntry) error {
	doc := journalDoc{
		Title:     entry.Title,
		Body:      entry.Body,
		Mood:      entry.Mood,
		CreatedAt: entry.CreatedAt,
	}
	if _, err := s.journalCol(ownerID).Doc(entry.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendJournal: %w", err)
	}
	return nil
}

func (s *Store) JournalEntries(ctx context.Context, ownerID string) ([]wellness.JournalEntry, error) {
	iter := s.journalCol(ownerID).OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var entries []wellness.JournalEntry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore JournalEntries: %w", err)
		}
		var doc journalDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode journalDoc: %w", err)
		}
		entries = append(entries, wellness.JournalEntry{
			ID:        snap.Ref.ID,
			Title:     doc.Title,
			Body:      doc.Body,
			Mood:      doc.Mood,
			CreatedAt: doc.CreatedAt,
		})
	}
	return entries, nil
}

func (s *Store) DeleteJournal(ctx context.Context, ownerID, entryID string) error {
	ref := s.journalCol(ownerID).Doc(entryID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		return fmt.Errorf("firestore DeleteJournal: %w", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteJournal: %w", err)
	}
	return nil
}

func (s *Store) SaveProfile(ctx context.Context, ownerID string, profile wellness.Profile) error {
	if _, err := s.profileDoc(ownerID).Set(ctx, profile); err != nil {
		return fmt.Errorf("firestore SaveProfile: %w", err)
	}
	return nil
}

func (s *Store) Profile(ctx context.Context, ownerID string) (wellness.Profile, bool, error) {
	snap, err := s.profileDoc(ownerID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return wellness.Profile{}, false, nil
		}
		return wellness.Profile{}, false, fmt.Errorf("firestore Profile: %w", err)
	}
	var profile wellness.Profile
	if err := snap.DataTo(&profile); err != nil {
		return wellness.Profile{}, false, fmt.Errorf("firestore Profile decode: %w", err)
	}
	return profile, true, nil
}

func (s *Store) CreateAppointment(ctx context.Context, appt wellness.Appointment) error {
	doc := appointmentDoc{
		UserID:      appt.UserID,
		TherapistID: appt.TherapistID,
		Therapist:   appt.Therapist,
		Specialty:   appt.Specialty,
		Date:        appt.Date,
		Time:        appt.Time,
		Status:      string(appt.Status),
		CreatedAt:   appt.CreatedAt,
	}
	if _, err := s.appointmentCol().Doc(appt.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore CreateAppointment: %w", err)
	}
	return nil
}

func (s *Store) AppointmentsByUser(ctx context.Context, userID string) ([]wellness.Appointment, error) {
	iter := s.appointmentCol().Where("user_id", "==", userID).OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var out []wellness.Appointment
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore AppointmentsByUser: %w", err)
		}
		var doc appointmentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode appointmentDoc: %w", err)
		}
		out = append(out, wellness.Appointment{
			ID:          snap.Ref.ID,
			UserID:      doc.UserID,
			TherapistID: doc.TherapistID,
			Therapist:   doc.Therapist,
			Specialty:   doc.Specialty,
			Date:        doc.Date,
			Time:        doc.Time,
			Status:      wellness.AppointmentStatus(doc.Status),
			CreatedAt:   doc.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
