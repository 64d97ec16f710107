package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adamj-ops/liferx-sub001/internal/db"
)

// Store provides session and message persistence.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert creates the session or, on id conflict, refreshes its owner and
// start time. Concurrent identical upserts are safe; the datastore's
// conflict handling is the only coordination.
func (s *Store) Upsert(ctx context.Context, sess Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if sess.ContractVersion == "" {
		sess.ContractVersion = "v1"
	}
	if sess.UserID == "" {
		sess.UserID = "anonymous"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, org_id, contract_version, started_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			org_id = excluded.org_id,
			contract_version = excluded.contract_version,
			started_at = excluded.started_at`,
		sess.ID, sess.UserID, sess.OrgID, sess.ContractVersion,
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

// Get retrieves a single session.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, org_id, contract_version, started_at
		FROM sessions WHERE id = ?`, id)

	var sess Session
	var ts string
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.OrgID, &sess.ContractVersion, &ts); err != nil {
		return nil, err
	}
	sess.StartedAt = parseTime(ts)
	return &sess, nil
}

// AddMessage appends a message to a session. If msg.ID is empty a UUID is
// generated.
func (s *Store) AddMessage(ctx context.Context, msg Message) (string, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.SessionID == "" {
		return "", fmt.Errorf("session id is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, role, content)
		VALUES (?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.Content,
	)
	if err != nil {
		return "", fmt.Errorf("inserting message: %w", err)
	}
	return msg.ID, nil
}

// GetMessages returns all messages of a session in insertion order.
func (s *Store) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var ts string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &ts); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(ts)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// CountSessions returns the number of session records, used by the
// idempotence tests and operational checks.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

func parseTime(ts string) time.Time {
	if t, err := time.Parse(time.DateTime, ts); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	return time.Time{}
}
