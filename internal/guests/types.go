// Package guests persists guest profiles, their scores, and personas.
package guests

import "time"

// Guest is a prospective or past interview guest, scoped to one org.
type Guest struct {
	ID                 string    `json:"id"`
	OrgID              string    `json:"org_id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	Company            string    `json:"company,omitempty"`
	Pillar             string    `json:"pillar,omitempty"`
	UniquePOV          string    `json:"unique_pov,omitempty"`
	HasChannelPresence bool      `json:"has_channel_presence"`
	PresenceStrength   float64   `json:"presence_strength"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Score is a point-in-time scoring of a guest. The most recent row is the
// one eligibility reads.
type Score struct {
	ID        string             `json:"id"`
	OrgID     string             `json:"org_id"`
	GuestID   string             `json:"guest_id"`
	ScoreType string             `json:"score_type"`
	Score     float64            `json:"score"`
	Factors   map[string]float64 `json:"factors"`
	CreatedAt time.Time          `json:"created_at"`
}

// Persona captures a guest's points of view. The most recent row is the
// one eligibility reads.
type Persona struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"org_id"`
	GuestID      string    `json:"guest_id"`
	PointOfViews []string  `json:"point_of_views"`
	Summary      string    `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
}
