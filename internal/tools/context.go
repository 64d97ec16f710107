package tools

import (
	"fmt"

	"github.com/google/uuid"
)

// Context carries the tenant scoping and write permission a tool call
// runs under. Handlers must scope every query by OrgID and honor
// AllowWrites.
type Context struct {
	OrgID       string
	SessionID   string
	UserID      string
	AllowWrites bool

	// Metadata is an opaque provenance bag from the caller. Tools may
	// log it; it is never persisted as-is.
	Metadata map[string]any
}

// RawContext is the caller-supplied context block of a dispatch request.
type RawContext struct {
	OrgID       string         `json:"org_id"`
	SessionID   string         `json:"session_id"`
	UserID      string         `json:"user_id"`
	AllowWrites bool           `json:"allowWrites"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ResolveContext validates a raw context and applies defaults. An org id
// that is present but not UUID-shaped is rejected; an absent org id
// falls back to the configured default tenant.
func ResolveContext(raw RawContext, defaultOrgID string) (*Context, error) {
	orgID := raw.OrgID
	if orgID == "" {
		orgID = defaultOrgID
	}
	if _, err := uuid.Parse(orgID); err != nil {
		return nil, fmt.Errorf("org id %q is not a valid UUID", orgID)
	}

	return &Context{
		OrgID:       orgID,
		SessionID:   raw.SessionID,
		UserID:      raw.UserID,
		AllowWrites: raw.AllowWrites,
		Metadata:    raw.Metadata,
	}, nil
}
