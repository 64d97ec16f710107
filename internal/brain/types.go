package brain

import "time"

// Item types stored in the brain. Free-form strings are accepted; these
// are the ones the tool handlers write.
const (
	TypeNote     = "note"
	TypeDecision = "decision"
	TypeMemory   = "memory"
)

// Item is one org-scoped knowledge record, keyed by (org, type, title).
type Item struct {
	ID        string            `json:"id"`
	OrgID     string            `json:"org_id"`
	ItemType  string            `json:"item_type"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SearchHit is one semantic search result.
type SearchHit struct {
	ID         string  `json:"id"`
	ItemType   string  `json:"item_type"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
}
