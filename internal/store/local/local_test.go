package local

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
	"github.com/otsyhq/otsy-backend/internal/store"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "otsy-test.db"))
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func msgAt(id, text string, sender chat.Sender, at time.Time) chat.Message {
	return chat.Message{ID: id, Text: text, Sender: sender, CreatedAt: at}
}

func TestHistoryRoundTripOrdered(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	// Inserted out of order on purpose.
	if err := s.AppendMessage(ctx, "dev-1", "otsy", msgAt("m2", "second", chat.SenderBot, base.Add(time.Second))); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}
	if err := s.AppendMessage(ctx, "dev-1", "otsy", msgAt("m1", "first", chat.SenderUser, base)); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	msgs, err := s.History(ctx, "dev-1", "otsy")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Fatalf("history out of order: %s, %s", msgs[0].ID, msgs[1].ID)
	}
	if !msgs[0].CreatedAt.Equal(base) {
		t.Fatalf("timestamp drift: got %v want %v", msgs[0].CreatedAt, base)
	}
	if msgs[0].PersonaID != "otsy" {
		t.Fatalf("persona not restored: %q", msgs[0].PersonaID)
	}
}

func TestHistoryIsolatedPerOwnerAndPersona(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("append err: %v", err)
		}
	}
	must(s.AppendMessage(ctx, "dev-1", "otsy", msgAt("a", "x", chat.SenderUser, now)))
	must(s.AppendMessage(ctx, "dev-1", "haven", msgAt("b", "y", chat.SenderUser, now)))
	must(s.AppendMessage(ctx, "dev-2", "otsy", msgAt("c", "z", chat.SenderUser, now)))

	msgs, err := s.History(ctx, "dev-1", "otsy")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "a" {
		t.Fatalf("session leaked across owners or personas: %+v", msgs)
	}
}

func TestReplaceHistory(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.AppendMessage(ctx, "dev-1", "otsy", msgAt("old", "bye", chat.SenderUser, now)); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}
	reset := msgAt("reset", "Chat cleared. How can I help?", chat.SenderBot, now.Add(time.Second))
	if err := s.ReplaceHistory(ctx, "dev-1", "otsy", []chat.Message{reset}); err != nil {
		t.Fatalf("ReplaceHistory err: %v", err)
	}

	msgs, err := s.History(ctx, "dev-1", "otsy")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "reset" {
		t.Fatalf("replace left wrong transcript: %+v", msgs)
	}
}

func TestUnsyncedFlagSurvives(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	msg := msgAt("m1", "offline", chat.SenderBot, time.Now().UTC())
	msg.Unsynced = true
	if err := s.AppendMessage(ctx, "dev-1", "otsy", msg); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	msgs, err := s.History(ctx, "dev-1", "otsy")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if !msgs[0].Unsynced {
		t.Fatal("unsynced flag lost on round trip")
	}
}

func TestSubscribeHistoryUnsupported(t *testing.T) {
	s := openStore(t)
	if _, err := s.SubscribeHistory(context.Background(), "dev-1", "otsy"); !errors.Is(err, store.ErrNoSubscription) {
		t.Fatalf("expected ErrNoSubscription, got %v", err)
	}
}

func TestMoodHistoryLimitAndOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	moods := []string{"bad", "okay", "good", "great"}
	for i, m := range moods {
		entry := wellness.MoodEntry{
			ID: m, Mood: m, Level: i + 1, Day: "Mon",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.AppendMood(ctx, "dev-1", entry); err != nil {
			t.Fatalf("AppendMood err: %v", err)
		}
	}

	got, err := s.MoodHistory(ctx, "dev-1", 3)
	if err != nil {
		t.Fatalf("MoodHistory err: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	// Last three, oldest first.
	want := []string{"okay", "good", "great"}
	for i, w := range want {
		if got[i].Mood != w {
			t.Fatalf("entry %d: got %s want %s", i, got[i].Mood, w)
		}
	}
}

func TestJournalLifecycle(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	first := wellness.JournalEntry{ID: "j1", Title: "day one", Body: "it was fine", CreatedAt: base}
	second := wellness.JournalEntry{ID: "j2", Body: "burn this", Mood: "angry", CreatedAt: base.Add(time.Minute)}
	if err := s.AppendJournal(ctx, "dev-1", first); err != nil {
		t.Fatalf("AppendJournal err: %v", err)
	}
	if err := s.AppendJournal(ctx, "dev-1", second); err != nil {
		t.Fatalf("AppendJournal err: %v", err)
	}

	entries, err := s.JournalEntries(ctx, "dev-1")
	if err != nil {
		t.Fatalf("JournalEntries err: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "j2" {
		t.Fatalf("expected newest first, got %+v", entries)
	}

	if err := s.DeleteJournal(ctx, "dev-1", "j2"); err != nil {
		t.Fatalf("DeleteJournal err: %v", err)
	}
	entries, err = s.JournalEntries(ctx, "dev-1")
	if err != nil {
		t.Fatalf("JournalEntries err: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "j1" {
		t.Fatalf("delete removed the wrong entry: %+v", entries)
	}

	if err := s.DeleteJournal(ctx, "dev-1", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if _, found, err := s.Profile(ctx, "dev-1"); err != nil || found {
		t.Fatalf("expected empty profile, found=%v err=%v", found, err)
	}

	profile := wellness.Profile{
		Name:   "Sam",
		Age:    "29",
		Gender: "prefer not to say",
		Responses: []wellness.IntakeResponse{
			{Question: "How have you been sleeping lately?", Answer: "badly"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.SaveProfile(ctx, "dev-1", profile); err != nil {
		t.Fatalf("SaveProfile err: %v", err)
	}

	got, found, err := s.Profile(ctx, "dev-1")
	if err != nil || !found {
		t.Fatalf("Profile err: found=%v err=%v", found, err)
	}
	if got.Name != "Sam" || len(got.Responses) != 1 {
		t.Fatalf("profile mangled on round trip: %+v", got)
	}

	// Saving again overwrites.
	profile.Name = "Samantha"
	if err := s.SaveProfile(ctx, "dev-1", profile); err != nil {
		t.Fatalf("SaveProfile err: %v", err)
	}
	got, _, err = s.Profile(ctx, "dev-1")
	if err != nil {
		t.Fatalf("Profile err: %v", err)
	}
	if got.Name != "Samantha" {
		t.Fatalf("profile not overwritten: %+v", got)
	}
}
