package content

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adamj-ops/liferx-sub001/internal/db"
)

// Store persists generated content assets.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Add inserts a new asset. The body is stored as-is; HTML is the rendered
// form and may be empty when rendering was skipped.
func (s *Store) Add(ctx context.Context, a Asset) (string, error) {
	if a.OrgID == "" {
		return "", fmt.Errorf("org_id is required")
	}
	switch a.Kind {
	case KindQuoteCard, KindScript, KindPostIdea:
	default:
		return "", fmt.Errorf("unknown asset kind %q", a.Kind)
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_assets (id, org_id, kind, source_type, source_id, theme_id, body, html)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, a.OrgID, a.Kind, a.SourceType, a.SourceID, nullable(a.ThemeID), a.Body, a.HTML)
	if err != nil {
		return "", fmt.Errorf("inserting asset: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Asset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, kind, source_type, source_id, theme_id, body, html, created_at
		FROM content_assets WHERE id = ?`, id)

	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning asset: %w", err)
	}
	return a, nil
}

// ListByKind returns the most recent assets of a kind for an org, newest first.
func (s *Store) ListByKind(ctx context.Context, orgID, kind string, limit int) ([]Asset, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, kind, source_type, source_id, theme_id, body, html, created_at
		FROM content_assets
		WHERE org_id = ? AND kind = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, orgID, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// CountBySource counts assets of a kind derived from one source record.
// Used to enforce per-source generation caps.
func (s *Store) CountBySource(ctx context.Context, orgID, kind, sourceType, sourceID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM content_assets
		WHERE org_id = ? AND kind = ? AND source_type = ? AND source_id = ?`,
		orgID, kind, sourceType, sourceID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting assets: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(sc scanner) (*Asset, error) {
	var a Asset
	var themeID sql.NullString
	var createdAt string
	if err := sc.Scan(&a.ID, &a.OrgID, &a.Kind, &a.SourceType, &a.SourceID,
		&themeID, &a.Body, &a.HTML, &createdAt); err != nil {
		return nil, err
	}
	a.ThemeID = themeID.String
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
