// Package sessions persists conversational sessions and their messages.
package sessions

import "time"

// Session is one conversation between an operator and the Hub. Re-entry
// with the same id is an upsert, never a duplicate.
type Session struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	OrgID           string    `json:"org_id"`
	ContractVersion string    `json:"contract_version"`
	StartedAt       time.Time `json:"started_at"`
}

// Message is one turn within a session. Append-only.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user", "assistant", "system"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
