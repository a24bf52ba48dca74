package journal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/service/journal"
	"github.com/otsyhq/otsy-backend/internal/store"
	"github.com/otsyhq/otsy-backend/internal/store/memory"
)

func newService(t *testing.T) *journal.Service {
	t.Helper()
	return journal.NewService(store.Dual{Local: memory.New()}, nil)
}

func TestAppendAndListNewestFirst(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	guest := identity.Anonymous("device-1")

	first, err := svc.Append(ctx, guest, "morning", "slept badly", "low")
	if err != nil {
		t.Fatalf("Append err: %v", err)
	}
	second, err := svc.Append(ctx, guest, "", "felt better after a walk", "")
	if err != nil {
		t.Fatalf("Append err: %v", err)
	}

	entries, err := svc.List(ctx, guest)
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != second.ID || entries[1].ID != first.ID {
		t.Fatalf("entries not newest first: %+v", entries)
	}
}

func TestAppendRejectsEmptyBody(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Append(context.Background(), identity.Anonymous("device-1"), "title", "   ", ""); !errors.Is(err, journal.ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestBurnLetterDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	guest := identity.Anonymous("device-1")

	entry, err := svc.Append(ctx, guest, "burn letter", "everything I can't say out loud", "angry")
	if err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if err := svc.Delete(ctx, guest, entry.ID); err != nil {
		t.Fatalf("Delete err: %v", err)
	}

	entries, err := svc.List(ctx, guest)
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entry survived the burn: %+v", entries)
	}

	if err := svc.Delete(ctx, guest, entry.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}
