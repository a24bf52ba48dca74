package wellness

import "time"

// JournalEntry is a private journal note. Entries can be deleted, which is
// how the "burn letter" exercise works: write it, then let it go.
type JournalEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
