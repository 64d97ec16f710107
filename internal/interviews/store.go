package interviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adamj-ops/liferx-sub001/internal/db"
)

// Store provides CRUD operations for interviews and quotes.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert creates or updates an interview. When iv.ID names an existing
// row that row is updated, otherwise a new row is inserted. Returns the
// interview id and whether a new row was created.
func (s *Store) Upsert(ctx context.Context, iv Interview) (string, bool, error) {
	if iv.OrgID == "" || iv.GuestID == "" || iv.Title == "" {
		return "", false, fmt.Errorf("org id, guest id, and title are required")
	}
	if iv.Status == "" {
		iv.Status = "draft"
	}
	tags, err := json.Marshal(emptyIfNil(iv.Tags))
	if err != nil {
		return "", false, fmt.Errorf("marshalling tags: %w", err)
	}

	if iv.ID != "" {
		res, err := s.db.ExecContext(ctx, `
			UPDATE interviews SET title = ?, status = ?, summary = ?, transcript = ?,
				tags = ?, updated_at = datetime('now')
			WHERE org_id = ? AND id = ?`,
			iv.Title, iv.Status, iv.Summary, iv.Transcript, string(tags), iv.OrgID, iv.ID,
		)
		if err != nil {
			return "", false, fmt.Errorf("updating interview: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return iv.ID, false, nil
		}
	}

	if iv.ID == "" {
		iv.ID = uuid.New().String()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interviews (id, org_id, guest_id, title, status, summary, transcript, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		iv.ID, iv.OrgID, iv.GuestID, iv.Title, iv.Status, iv.Summary, iv.Transcript, string(tags),
	)
	if err != nil {
		return "", false, fmt.Errorf("inserting interview: %w", err)
	}
	return iv.ID, true, nil
}

// Get retrieves an interview by id within an org. A row belonging to
// another org is not found.
func (s *Store) Get(ctx context.Context, orgID, id string) (*Interview, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, guest_id, title, status, summary, transcript, tags, created_at, updated_at
		FROM interviews WHERE org_id = ? AND id = ?`, orgID, id)

	var iv Interview
	var tagsJSON, createdAt, updatedAt string
	err := row.Scan(&iv.ID, &iv.OrgID, &iv.GuestID, &iv.Title, &iv.Status,
		&iv.Summary, &iv.Transcript, &tagsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &iv.Tags); err != nil {
		iv.Tags = nil
	}
	iv.CreatedAt = parseTime(createdAt)
	iv.UpdatedAt = parseTime(updatedAt)
	return &iv, nil
}

// SetTags replaces an interview's tag list.
func (s *Store) SetTags(ctx context.Context, orgID, id string, tags []string) error {
	data, err := json.Marshal(emptyIfNil(tags))
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE interviews SET tags = ?, updated_at = datetime('now') WHERE org_id = ? AND id = ?",
		string(data), orgID, id)
	if err != nil {
		return fmt.Errorf("updating tags: %w", err)
	}
	return nil
}

// SetSummary replaces an interview's summary.
func (s *Store) SetSummary(ctx context.Context, orgID, id, summary string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE interviews SET summary = ?, updated_at = datetime('now') WHERE org_id = ? AND id = ?",
		summary, orgID, id)
	if err != nil {
		return fmt.Errorf("updating summary: %w", err)
	}
	return nil
}

// AddQuote records a quote extracted from an interview.
func (s *Store) AddQuote(ctx context.Context, q Quote) (string, error) {
	if q.InterviewID == "" || q.Quote == "" {
		return "", fmt.Errorf("interview id and quote are required")
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, org_id, interview_id, guest_id, quote, pillar, emotional_insight, usable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.OrgID, q.InterviewID, q.GuestID, q.Quote,
		nullable(q.Pillar), nullable(q.EmotionalInsight), boolToInt(q.Usable),
	)
	if err != nil {
		return "", fmt.Errorf("inserting quote: %w", err)
	}
	return q.ID, nil
}

// RecentQuotes returns the most recent quotes for an interview, newest
// first, capped at limit.
func (s *Store) RecentQuotes(ctx context.Context, orgID, interviewID string, limit int) ([]Quote, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, interview_id, guest_id, quote, pillar, emotional_insight, usable, created_at
		FROM quotes WHERE org_id = ? AND interview_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, orgID, interviewID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()
	return collectQuotes(rows)
}

// GetQuote retrieves a single quote by id within an org.
func (s *Store) GetQuote(ctx context.Context, orgID, id string) (*Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, interview_id, guest_id, quote, pillar, emotional_insight, usable, created_at
		FROM quotes WHERE org_id = ? AND id = ?`, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("querying quote: %w", err)
	}
	defer rows.Close()
	quotes, err := collectQuotes(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning quote: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("quote %s not found", id)
	}
	return &quotes[0], nil
}

// CountUsableByGuest counts a guest's usable quotes across all interviews.
func (s *Store) CountUsableByGuest(ctx context.Context, orgID, guestID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM quotes WHERE org_id = ? AND guest_id = ? AND usable = 1",
		orgID, guestID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting usable quotes: %w", err)
	}
	return n, nil
}

func collectQuotes(rows *sql.Rows) ([]Quote, error) {
	var out []Quote
	for rows.Next() {
		var q Quote
		var pillar, insight sql.NullString
		var usable int
		var ts string
		err := rows.Scan(&q.ID, &q.OrgID, &q.InterviewID, &q.GuestID, &q.Quote,
			&pillar, &insight, &usable, &ts)
		if err != nil {
			return nil, err
		}
		q.Pillar = pillar.String
		q.EmotionalInsight = insight.String
		q.Usable = usable != 0
		q.CreatedAt = parseTime(ts)
		out = append(out, q)
	}
	return out, rows.Err()
}

func emptyIfNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
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
