package content

import "time"

// Asset kinds. The CHECK constraint in the schema mirrors this list.
const (
	KindQuoteCard = "quote_card"
	KindScript    = "script"
	KindPostIdea  = "post_idea"
)

// Asset is a generated piece of content tied back to its source record.
type Asset struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	Kind       string    `json:"kind"`
	SourceType string    `json:"source_type,omitempty"`
	SourceID   string    `json:"source_id,omitempty"`
	ThemeID    string    `json:"theme_id,omitempty"`
	Body       string    `json:"body"`
	HTML       string    `json:"html,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
