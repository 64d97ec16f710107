package outreach

import "time"

// Campaign types passed downstream to the compose tool.
const (
	CampaignPostRelease      = "post_release"
	CampaignContributorInvite = "contributor_invite"
)

// Event is one logged outreach touchpoint for a guest.
type Event struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"org_id"`
	GuestID      string    `json:"guest_id"`
	EventType    string    `json:"event_type"`
	Channel      string    `json:"channel,omitempty"`
	CampaignType string    `json:"campaign_type,omitempty"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Followup is a pending action tied to another record.
type Followup struct {
	ID          string     `json:"id"`
	OrgID       string     `json:"org_id"`
	RelatedType string     `json:"related_type"`
	RelatedID   string     `json:"related_id"`
	Action      string     `json:"action"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Gate is one hard eligibility check. Value is nil when the underlying
// record does not exist; a missing measurement fails the gate.
type Gate struct {
	Passed bool     `json:"passed"`
	Value  *float64 `json:"value"`
}

// Eligibility is the full verdict for one guest. Computed fresh from
// store state on every call and never persisted.
type Eligibility struct {
	Eligible bool `json:"eligible"`

	ScoreGate   Gate `json:"score_gate"`
	PersonaGate Gate `json:"persona_gate"`
	QuoteGate   Gate `json:"quote_gate"`

	HasChannelPresence bool    `json:"has_channel_presence"`
	PresenceStrength   float64 `json:"presence_strength"`
	PresenceStrong     bool    `json:"presence_strong"`

	Reasons []string `json:"reasons"`
}

// Candidate pairs a guest with its computed eligibility, for discovery.
type Candidate struct {
	GuestID     string       `json:"guest_id"`
	Name        string       `json:"name"`
	Eligibility *Eligibility `json:"eligibility"`
}
