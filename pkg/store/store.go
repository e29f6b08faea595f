// Package store persists parsed chatrooms into a local sqlite index
// so repeated analyses and ad-hoc queries don't re-parse the exports.
package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/talklog/talklog/pkg/parser"
)

const schema = `
CREATE TABLE IF NOT EXISTS chatrooms (
    id          TEXT PRIMARY KEY,
    source_path TEXT NOT NULL UNIQUE,
    title       TEXT NOT NULL,
    locale      TEXT NOT NULL,
    saved_at    TEXT NOT NULL DEFAULT '',
    start_date  TEXT NOT NULL DEFAULT '',
    end_date    TEXT NOT NULL DEFAULT '',
    indexed_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    chatroom_id TEXT NOT NULL REFERENCES chatrooms(id),
    seq         INTEGER NOT NULL,
    ts          TEXT NOT NULL DEFAULT '',
    author      TEXT NOT NULL,
    content     TEXT NOT NULL,
    rich        TEXT NOT NULL DEFAULT '',
    duration    INTEGER NOT NULL DEFAULT 0,
    line_num    INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (chatroom_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_messages_author ON messages(chatroom_id, author);

CREATE TABLE IF NOT EXISTS events (
    chatroom_id TEXT NOT NULL REFERENCES chatrooms(id),
    seq         INTEGER NOT NULL,
    kind        TEXT NOT NULL,
    actor       TEXT NOT NULL DEFAULT '',
    subject     TEXT NOT NULL DEFAULT '',
    raw         TEXT NOT NULL,
    line_num    INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (chatroom_id, seq)
);
`

// Store is a sqlite-backed chat index.
type Store struct {
	db      *sql.DB
	entropy *rand.Rand
}

// Open opens or creates a sqlite index at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// IndexChatroom upserts one parsed export into the index. An existing
// row for the same source path is replaced wholesale, so re-indexing
// a re-exported file is idempotent. Returns the chatroom row ID.
func (s *Store) IndexChatroom(sourcePath string, room *parser.Chatroom) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// Drop any previous index of this file.
	var oldID string
	err = tx.QueryRow("SELECT id FROM chatrooms WHERE source_path = ?", sourcePath).Scan(&oldID)
	if err != nil && err != sql.ErrNoRows {
		return "", err
	}
	if oldID != "" {
		if _, err := tx.Exec("DELETE FROM messages WHERE chatroom_id = ?", oldID); err != nil {
			return "", err
		}
		if _, err := tx.Exec("DELETE FROM events WHERE chatroom_id = ?", oldID); err != nil {
			return "", err
		}
		if _, err := tx.Exec("DELETE FROM chatrooms WHERE id = ?", oldID); err != nil {
			return "", err
		}
	}

	id := s.newID()
	_, err = tx.Exec(`INSERT INTO chatrooms
		(id, source_path, title, locale, saved_at, start_date, end_date, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sourcePath, room.Title, string(room.Locale),
		timeString(room.SavedAt), timeString(room.StartDate), timeString(room.EndDate),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}

	msgStmt, err := tx.Prepare(`INSERT INTO messages
		(chatroom_id, seq, ts, author, content, rich, duration, line_num)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer msgStmt.Close()

	for seq, msg := range room.Messages {
		_, err := msgStmt.Exec(id, seq, timeString(msg.Time), msg.Author, msg.Content,
			string(msg.Rich), msg.DurationSeconds, msg.LineNum)
		if err != nil {
			return "", err
		}
	}

	evStmt, err := tx.Prepare(`INSERT INTO events
		(chatroom_id, seq, kind, actor, subject, raw, line_num)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer evStmt.Close()

	for seq, ev := range room.Events {
		_, err := evStmt.Exec(id, seq, string(ev.Kind), ev.Actor, ev.Subject, ev.Raw, ev.LineNum)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ChatroomCount returns the number of indexed chatrooms.
func (s *Store) ChatroomCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM chatrooms").Scan(&n)
	return n, err
}

// MessageCount returns the number of indexed messages.
func (s *Store) MessageCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// AuthorCount pairs a participant with a message count.
type AuthorCount struct {
	Author   string
	Messages int
}

// TopAuthors returns the most active participants across the whole
// index, descending.
func (s *Store) TopAuthors(limit int) ([]AuthorCount, error) {
	rows, err := s.db.Query(
		"SELECT author, COUNT(*) AS n FROM messages GROUP BY author ORDER BY n DESC, author LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuthorCount
	for rows.Next() {
		var a AuthorCount
		if err := rows.Scan(&a.Author, &a.Messages); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// timeString renders a timestamp for storage. Zero times (undated
// messages, missing date tags) are stored as empty strings.
func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
