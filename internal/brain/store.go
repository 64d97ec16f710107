package brain

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

// Store persists brain items in SQLite. The semantic index is layered
// on top by Index; the store is the source of truth.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert inserts an item or updates the existing row with the same
// (org, type, title) key. Returns the row id and whether it was created.
func (s *Store) Upsert(ctx context.Context, it Item) (string, bool, error) {
	if it.OrgID == "" || it.Title == "" {
		return "", false, fmt.Errorf("org_id and title are required")
	}
	if it.ItemType == "" {
		it.ItemType = TypeNote
	}
	metadata, err := json.Marshal(orEmpty(it.Metadata))
	if err != nil {
		return "", false, fmt.Errorf("marshalling metadata: %w", err)
	}

	existing, err := s.GetByKey(ctx, it.OrgID, it.ItemType, it.Title)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("looking up item: %w", err)
	}

	if existing != nil {
		_, err := s.db.ExecContext(ctx, `
			UPDATE brain_items SET content = ?, metadata = ?, updated_at = datetime('now')
			WHERE id = ?`, it.Content, string(metadata), existing.ID)
		if err != nil {
			return "", false, fmt.Errorf("updating item: %w", err)
		}
		return existing.ID, false, nil
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO brain_items (id, org_id, item_type, title, content, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, it.OrgID, it.ItemType, it.Title, it.Content, string(metadata))
	if err != nil {
		return "", false, fmt.Errorf("inserting item: %w", err)
	}
	return id, true, nil
}

// AppendContent appends text to an existing item's content, newline
// separated. Used by the memory tool.
func (s *Store) AppendContent(ctx context.Context, id, text string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE brain_items
		SET content = CASE WHEN content = '' THEN ? ELSE content || char(10) || ? END,
			updated_at = datetime('now')
		WHERE id = ?`, text, text, id)
	if err != nil {
		return fmt.Errorf("appending content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("item %s not found", id)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, item_type, title, content, metadata, created_at, updated_at
		FROM brain_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s not found", id)
	}
	return it, err
}

// GetByKey retrieves an item by its natural key. Returns sql.ErrNoRows
// when absent.
func (s *Store) GetByKey(ctx context.Context, orgID, itemType, title string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, item_type, title, content, metadata, created_at, updated_at
		FROM brain_items WHERE org_id = ? AND item_type = ? AND title = ?`,
		orgID, itemType, title)
	return scanItem(row)
}

// List returns items of a type for an org, most recently updated first.
func (s *Store) List(ctx context.Context, orgID, itemType string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, item_type, title, content, metadata, created_at, updated_at
		FROM brain_items
		WHERE org_id = ? AND item_type = ?
		ORDER BY updated_at DESC, rowid DESC
		LIMIT ?`, orgID, itemType, limit)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// ListAll returns every item across orgs, used to rebuild the search
// index at startup.
func (s *Store) ListAll(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, item_type, title, content, metadata, created_at, updated_at
		FROM brain_items
		ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing all items: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (*Item, error) {
	var it Item
	var metadata, createdAt, updatedAt string
	if err := sc.Scan(&it.ID, &it.OrgID, &it.ItemType, &it.Title, &it.Content,
		&metadata, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadata), &it.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	it.CreatedAt = parseTime(createdAt)
	it.UpdatedAt = parseTime(updatedAt)
	return &it, nil
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func parseTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
