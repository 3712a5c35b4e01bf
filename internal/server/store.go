package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yourusername/catbot-chat/internal/protocol"
)

// timestampLayout is fixed width so stored timestamps sort as text
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store is the SQLite message log. Rooms exist only through their messages.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens (creating if needed) the database at path
func OpenStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "./chat_history.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id TEXT NOT NULL,
		send_from TEXT NOT NULL,
		message TEXT NOT NULL,
		response_id TEXT,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, timestamp);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveMessage appends one turn to room and returns it as stored
func (s *Store) SaveMessage(ctx context.Context, roomID, sender, text, responseID string) (protocol.Message, error) {
	ts := s.now().UTC().Format(timestampLayout)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (room_id, send_from, message, response_id, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		roomID, sender, text, nullString(responseID), ts,
	)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return protocol.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return protocol.Message{
		ID:         id,
		RoomID:     roomID,
		Sender:     sender,
		Text:       text,
		ResponseID: responseID,
		Timestamp:  ts,
	}, nil
}

// ListRooms returns every room id, most recently active first
func (s *Store) ListRooms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT room_id FROM messages
		GROUP BY room_id
		ORDER BY MAX(timestamp) DESC, MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, id)
	}
	return rooms, rows.Err()
}

// History returns the messages of room, oldest first
func (s *Store) History(ctx context.Context, roomID string) ([]protocol.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, send_from, message, response_id, timestamp
		FROM messages
		WHERE room_id = ?
		ORDER BY timestamp ASC, id ASC`, roomID)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", roomID, err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// RecentMessages returns at most limit of the newest messages of room, oldest first
func (s *Store) RecentMessages(ctx context.Context, roomID string, limit int) ([]protocol.Message, error) {
	if limit <= 0 {
		return []protocol.Message{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, send_from, message, response_id, timestamp FROM (
			SELECT * FROM messages
			WHERE room_id = ?
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		) ORDER BY timestamp ASC, id ASC`, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages %s: %w", roomID, err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]protocol.Message, error) {
	messages := []protocol.Message{}
	for rows.Next() {
		var (
			m          protocol.Message
			responseID sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Text, &responseID, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ResponseID = responseID.String
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
