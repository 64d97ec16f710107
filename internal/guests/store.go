package guests

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adamj-ops/liferx-sub001/internal/db"
)

// Store provides CRUD operations for guests, scores, and personas.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert creates or updates a guest keyed by (org_id, name). It returns
// the guest id and whether a new row was created.
func (s *Store) Upsert(ctx context.Context, g Guest) (string, bool, error) {
	if g.OrgID == "" || g.Name == "" {
		return "", false, fmt.Errorf("org id and name are required")
	}

	existing, err := s.GetByName(ctx, g.OrgID, g.Name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("looking up guest: %w", err)
	}

	if existing != nil {
		_, err := s.db.ExecContext(ctx, `
			UPDATE guests SET email = ?, company = ?, pillar = ?, unique_pov = ?,
				has_channel_presence = ?, presence_strength = ?, updated_at = datetime('now')
			WHERE id = ?`,
			nullable(g.Email), nullable(g.Company), nullable(g.Pillar), nullable(g.UniquePOV),
			boolToInt(g.HasChannelPresence), g.PresenceStrength, existing.ID,
		)
		if err != nil {
			return "", false, fmt.Errorf("updating guest: %w", err)
		}
		return existing.ID, false, nil
	}

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO guests (id, org_id, name, email, company, pillar, unique_pov,
			has_channel_presence, presence_strength)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OrgID, g.Name,
		nullable(g.Email), nullable(g.Company), nullable(g.Pillar), nullable(g.UniquePOV),
		boolToInt(g.HasChannelPresence), g.PresenceStrength,
	)
	if err != nil {
		return "", false, fmt.Errorf("inserting guest: %w", err)
	}
	return g.ID, true, nil
}

// Get retrieves a guest by id within an org. A row belonging to another
// org is not found.
func (s *Store) Get(ctx context.Context, orgID, id string) (*Guest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, email, company, pillar, unique_pov,
			has_channel_presence, presence_strength, created_at, updated_at
		FROM guests WHERE org_id = ? AND id = ?`, orgID, id)
	return scanGuest(row)
}

// GetByName retrieves a guest by its (org, name) key.
func (s *Store) GetByName(ctx context.Context, orgID, name string) (*Guest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, email, company, pillar, unique_pov,
			has_channel_presence, presence_strength, created_at, updated_at
		FROM guests WHERE org_id = ? AND name = ?`, orgID, name)
	g, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return g, err
}

// AddScore records a new score row for a guest.
func (s *Store) AddScore(ctx context.Context, sc Score) (string, error) {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	if sc.ScoreType == "" {
		sc.ScoreType = "overall"
	}
	factors, err := json.Marshal(sc.Factors)
	if err != nil {
		return "", fmt.Errorf("marshalling factors: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO guest_scores (id, org_id, guest_id, score_type, score, factors)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.OrgID, sc.GuestID, sc.ScoreType, sc.Score, string(factors),
	)
	if err != nil {
		return "", fmt.Errorf("inserting score: %w", err)
	}
	return sc.ID, nil
}

// LatestScore returns the most recent score for a guest, or nil when the
// guest has never been scored. Absence is a measurement, not an error.
func (s *Store) LatestScore(ctx context.Context, orgID, guestID string) (*Score, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, guest_id, score_type, score, factors, created_at
		FROM guest_scores WHERE org_id = ? AND guest_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, orgID, guestID)

	var sc Score
	var factorsJSON, ts string
	err := row.Scan(&sc.ID, &sc.OrgID, &sc.GuestID, &sc.ScoreType, &sc.Score, &factorsJSON, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest score: %w", err)
	}
	if err := json.Unmarshal([]byte(factorsJSON), &sc.Factors); err != nil {
		sc.Factors = nil
	}
	sc.CreatedAt = parseTime(ts)
	return &sc, nil
}

// AddPersona records a new persona row for a guest.
func (s *Store) AddPersona(ctx context.Context, p Persona) (string, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	povs, err := json.Marshal(p.PointOfViews)
	if err != nil {
		return "", fmt.Errorf("marshalling point of views: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO guest_personas (id, org_id, guest_id, point_of_views, summary)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.OrgID, p.GuestID, string(povs), p.Summary,
	)
	if err != nil {
		return "", fmt.Errorf("inserting persona: %w", err)
	}
	return p.ID, nil
}

// LatestPersona returns the most recent persona for a guest, or nil when
// none exists.
func (s *Store) LatestPersona(ctx context.Context, orgID, guestID string) (*Persona, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, guest_id, point_of_views, summary, created_at
		FROM guest_personas WHERE org_id = ? AND guest_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, orgID, guestID)

	var p Persona
	var povJSON, ts string
	err := row.Scan(&p.ID, &p.OrgID, &p.GuestID, &povJSON, &p.Summary, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest persona: %w", err)
	}
	if err := json.Unmarshal([]byte(povJSON), &p.PointOfViews); err != nil {
		p.PointOfViews = nil
	}
	p.CreatedAt = parseTime(ts)
	return &p, nil
}

// ListAboveScore returns guests whose latest score meets the threshold,
// newest scores first, capped at limit. Used by batch discovery.
func (s *Store) ListAboveScore(ctx context.Context, orgID string, threshold float64, limit int) ([]Guest, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.org_id, g.name, g.email, g.company, g.pillar, g.unique_pov,
			g.has_channel_presence, g.presence_strength, g.created_at, g.updated_at
		FROM guests g
		JOIN guest_scores sc ON sc.id = (
			SELECT id FROM guest_scores
			WHERE guest_id = g.id AND org_id = g.org_id
			ORDER BY created_at DESC, rowid DESC LIMIT 1
		)
		WHERE g.org_id = ? AND sc.score >= ?
		ORDER BY sc.score DESC
		LIMIT ?`, orgID, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("querying guests above score: %w", err)
	}
	defer rows.Close()

	var out []Guest
	for rows.Next() {
		g, err := scanGuestRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGuestInto(sc scanner) (*Guest, error) {
	var (
		g                                  Guest
		email, company, pillar, uniquePOV  sql.NullString
		presence                           int
		createdAt, updatedAt               string
	)
	err := sc.Scan(&g.ID, &g.OrgID, &g.Name, &email, &company, &pillar, &uniquePOV,
		&presence, &g.PresenceStrength, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	g.Email = email.String
	g.Company = company.String
	g.Pillar = pillar.String
	g.UniquePOV = uniquePOV.String
	g.HasChannelPresence = presence != 0
	g.CreatedAt = parseTime(createdAt)
	g.UpdatedAt = parseTime(updatedAt)
	return &g, nil
}

func scanGuest(row *sql.Row) (*Guest, error)       { return scanGuestInto(row) }
func scanGuestRows(rows *sql.Rows) (*Guest, error) { return scanGuestInto(rows) }

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
