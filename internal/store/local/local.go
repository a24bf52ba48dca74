// Package local is the device-scoped Sink backing anonymous identities: a
// single sqlite file standing in for the browser's local storage. It has no
// change notifications; callers re-read after writing.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
	"github.com/otsyhq/otsy-backend/internal/store"
)

const (
	driver = "sqlite"
	dsnOpt = "?_pragma=busy_timeout(3000)&_pragma=journal_mode(WAL)"
)

type Store struct {
	db *sql.DB
}

// Open creates the database file (and parent directory) if needed and runs
// the schema migration.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("local store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("local store: create dir: %w", err)
	}
	db, err := sql.Open(driver, path+dsnOpt)
	if err != nil {
		return nil, fmt.Errorf("local store: open db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	owner_key     TEXT NOT NULL,
	persona_id    TEXT NOT NULL,
	id            TEXT NOT NULL,
	sender        TEXT NOT NULL,
	text          TEXT NOT NULL,
	unsynced      INTEGER NOT NULL DEFAULT 0,
	created_at_ms INTEGER NOT NULL,
	PRIMARY KEY (owner_key, persona_id, id)
);
CREATE TABLE IF NOT EXISTS mood_logs (
	owner_key     TEXT NOT NULL,
	id            TEXT NOT NULL,
	mood          TEXT NOT NULL,
	level         INTEGER NOT NULL,
	day           TEXT NOT NULL,
	created_at_ms INTEGER NOT NULL,
	PRIMARY KEY (owner_key, id)
);
CREATE TABLE IF NOT EXISTS journal_entries (
	owner_key     TEXT NOT NULL,
	id            TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	body          TEXT NOT NULL,
	mood          TEXT NOT NULL DEFAULT '',
	created_at_ms INTEGER NOT NULL,
	PRIMARY KEY (owner_key, id)
);
CREATE TABLE IF NOT EXISTS profiles (
	owner_key TEXT PRIMARY KEY,
	payload   TEXT NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("local store: migrate: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, ownerID, personaID string) ([]chat.Message, error) {
	const q = `SELECT id, sender, text, unsynced, created_at_ms
FROM chat_messages WHERE owner_key = ? AND persona_id = ?
ORDER BY created_at_ms ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q, ownerID, personaID)
	if err != nil {
		return nil, fmt.Errorf("local store: history: %w", err)
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var (
			msg      chat.Message
			sender   string
			unsynced int64
			ms       int64
		)
		if err := rows.Scan(&msg.ID, &sender, &msg.Text, &unsynced, &ms); err != nil {
			return nil, fmt.Errorf("local store: scan message: %w", err)
		}
		msg.Sender = chat.Sender(sender)
		msg.PersonaID = personaID
		msg.Unsynced = unsynced != 0
		msg.CreatedAt = time.UnixMilli(ms).UTC()
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *Store) AppendMessage(ctx context.Context, ownerID, personaID string, msg chat.Message) error {
	const q = `INSERT INTO chat_messages (owner_key, persona_id, id, sender, text, unsynced, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	unsynced := 0
	if msg.Unsynced {
		unsynced = 1
	}
	_, err := s.db.ExecContext(ctx, q, ownerID, personaID, msg.ID, string(msg.Sender), msg.Text, unsynced, msg.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("local store: append message: %w", err)
	}
	return nil
}

func (s *Store) ReplaceHistory(ctx context.Context, ownerID, personaID string, msgs []chat.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("local store: replace history: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE owner_key = ? AND persona_id = ?`, ownerID, personaID); err != nil {
		return fmt.Errorf("local store: clear history: %w", err)
	}
	for _, msg := range msgs {
		unsynced := 0
		if msg.Unsynced {
			unsynced = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_messages (owner_key, persona_id, id, sender, text, unsynced, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ownerID, personaID, msg.ID, string(msg.Sender), msg.Text, unsynced, msg.CreatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("local store: insert message: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) SubscribeHistory(context.Context, string, string) (store.Subscription, error) {
	return nil, store.ErrNoSubscription
}

func (s *Store) AppendMood(ctx context.Context, ownerID string, entry wellness.MoodEntry) error {
	const q = `INSERT INTO mood_logs (owner_key, id, mood, level, day, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, ownerID, entry.ID, entry.Mood, entry.Level, entry.Day, entry.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("local store: append mood: %w", err)
	}
	return nil
}

func (s *Store) MoodHistory(ctx context.Context, ownerID string, limit int) ([]wellness.MoodEntry, error) {
	q := `SELECT id, mood, level, day, created_at_ms FROM mood_logs
WHERE owner_key = ? ORDER BY created_at_ms DESC, id DESC`
	args := []any{ownerID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("local store: mood history: %w", err)
	}
	defer rows.Close()

	var newestFirst []wellness.MoodEntry
	for rows.Next() {
		var (
			e  wellness.MoodEntry
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.Mood, &e.Level, &e.Day, &ms); err != nil {
			return nil, fmt.Errorf("local store: scan mood: %w", err)
		}
		e.CreatedAt = time.UnixMilli(ms).UTC()
		newestFirst = append(newestFirst, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Callers expect chronological order.
	out := make([]wellness.MoodEntry, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		out = append(out, newestFirst[i])
	}
	return out, nil
}

func (s *Store) AppendJournal(ctx context.Context, ownerID string, entry wellness.JournalEntry) error {
	const q = `INSERT INTO journal_entries (owner_key, id, title, body, mood, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, ownerID, entry.ID, entry.Title, entry.Body, entry.Mood, entry.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("local store: append journal: %w", err)
	}
	return nil
}

func (s *Store) JournalEntries(ctx context.Context, ownerID string) ([]wellness.JournalEntry, error) {
	const q = `SELECT id, title, body, mood, created_at_ms FROM journal_entries
WHERE owner_key = ? ORDER BY created_at_ms DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("local store: journal entries: %w", err)
	}
	defer rows.Close()

	var entries []wellness.JournalEntry
	for rows.Next() {
		var (
			e  wellness.JournalEntry
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Body, &e.Mood, &ms); err != nil {
			return nil, fmt.Errorf("local store: scan journal: %w", err)
		}
		e.CreatedAt = time.UnixMilli(ms).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteJournal(ctx context.Context, ownerID, entryID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM journal_entries WHERE owner_key = ? AND id = ?`, ownerID, entryID)
	if err != nil {
		return fmt.Errorf("local store: delete journal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SaveProfile(ctx context.Context, ownerID string, profile wellness.Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("local store: encode profile: %w", err)
	}
	const q = `INSERT INTO profiles (owner_key, payload) VALUES (?, ?)
ON CONFLICT(owner_key) DO UPDATE SET payload = excluded.payload`
	if _, err := s.db.ExecContext(ctx, q, ownerID, string(payload)); err != nil {
		return fmt.Errorf("local store: save profile: %w", err)
	}
	return nil
}

func (s *Store) Profile(ctx context.Context, ownerID string) (wellness.Profile, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM profiles WHERE owner_key = ?`, ownerID).Scan(&payload)
	if err == sql.ErrNoRows {
		return wellness.Profile{}, false, nil
	}
	if err != nil {
		return wellness.Profile{}, false, fmt.Errorf("local store: load profile: %w", err)
	}
	var profile wellness.Profile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return wellness.Profile{}, false, fmt.Errorf("local store: decode profile: %w", err)
	}
	return profile, true, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
