package chat

import (
	"testing"
	"time"
)

func TestSortMessagesStableOrder(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "c", CreatedAt: base.Add(2 * time.Second)},
		{ID: "b", CreatedAt: base},
		{ID: "a", CreatedAt: base},
	}

	SortMessages(msgs)

	// Chronological, ties broken by id so order is deterministic.
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Fatalf("position %d: got %s want %s", i, msgs[i].ID, id)
		}
	}
}
