package outreach

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adamj-ops/liferx-sub001/internal/db"
)

// Store persists outreach events and followups.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// LogEvent records one outreach touchpoint.
func (s *Store) LogEvent(ctx context.Context, e Event) (string, error) {
	if e.OrgID == "" || e.GuestID == "" || e.EventType == "" {
		return "", fmt.Errorf("org_id, guest_id and event_type are required")
	}
	if e.Status == "" {
		e.Status = "logged"
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outreach_events (id, org_id, guest_id, event_type, channel, campaign_type, status, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.OrgID, e.GuestID, e.EventType, e.Channel, e.CampaignType, e.Status, e.Message)
	if err != nil {
		return "", fmt.Errorf("inserting outreach event: %w", err)
	}
	return id, nil
}

// RecentEvents returns a guest's outreach history, newest first.
func (s *Store) RecentEvents(ctx context.Context, orgID, guestID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, guest_id, event_type, channel, campaign_type, status, message, created_at
		FROM outreach_events
		WHERE org_id = ? AND guest_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, orgID, guestID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing outreach events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(&e.ID, &e.OrgID, &e.GuestID, &e.EventType, &e.Channel,
			&e.CampaignType, &e.Status, &e.Message, &ts); err != nil {
			return nil, fmt.Errorf("scanning outreach event: %w", err)
		}
		e.CreatedAt = parseTime(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateFollowup records a pending action against a related record.
func (s *Store) CreateFollowup(ctx context.Context, f Followup) (string, error) {
	if f.OrgID == "" || f.RelatedType == "" || f.RelatedID == "" || f.Action == "" {
		return "", fmt.Errorf("org_id, related_type, related_id and action are required")
	}
	if f.Priority == "" {
		f.Priority = "normal"
	}

	var dueAt any
	if f.DueAt != nil {
		dueAt = f.DueAt.UTC().Format("2006-01-02 15:04:05")
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO followups (id, org_id, related_type, related_id, action, due_at, priority, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'open')`,
		id, f.OrgID, f.RelatedType, f.RelatedID, f.Action, dueAt, f.Priority)
	if err != nil {
		return "", fmt.Errorf("inserting followup: %w", err)
	}
	return id, nil
}

// ListOpenFollowups returns open followups for an org, oldest first.
func (s *Store) ListOpenFollowups(ctx context.Context, orgID string, limit int) ([]Followup, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, related_type, related_id, action, due_at, priority, status, created_at
		FROM followups
		WHERE org_id = ? AND status = 'open'
		ORDER BY created_at, rowid
		LIMIT ?`, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing followups: %w", err)
	}
	defer rows.Close()

	var out []Followup
	for rows.Next() {
		var f Followup
		var dueAt sql.NullString
		var ts string
		if err := rows.Scan(&f.ID, &f.OrgID, &f.RelatedType, &f.RelatedID,
			&f.Action, &dueAt, &f.Priority, &f.Status, &ts); err != nil {
			return nil, fmt.Errorf("scanning followup: %w", err)
		}
		if dueAt.Valid {
			t := parseTime(dueAt.String)
			f.DueAt = &t
		}
		f.CreatedAt = parseTime(ts)
		out = append(out, f)
	}
	return out, rows.Err()
}

// CloseFollowup marks a followup done.
func (s *Store) CloseFollowup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE followups SET status = 'done' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("closing followup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("followup %s not found", id)
	}
	return nil
}

func parseTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
