package chat

import (
	"sort"
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one immutable turn in a session transcript. Messages are only
// ever appended or bulk-replaced by a clear; they are never edited in place.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	PersonaID string    `json:"personaId,omitempty"`
	Unsynced  bool      `json:"unsynced,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SortMessages orders a transcript by CreatedAt ascending, ties broken by ID.
// Sinks assign client-side timestamps, so a reload may observe writes from
// concurrent tabs out of order until resorted.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}
