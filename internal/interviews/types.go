// Package interviews persists interviews and the quotes pulled from them.
package interviews

import "time"

// Interview is a recorded conversation with a guest.
type Interview struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	GuestID    string    `json:"guest_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Summary    string    `json:"summary"`
	Transcript string    `json:"transcript"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Quote is a single quotable passage extracted from an interview.
type Quote struct {
	ID               string    `json:"id"`
	OrgID            string    `json:"org_id"`
	InterviewID      string    `json:"interview_id"`
	GuestID          string    `json:"guest_id"`
	Quote            string    `json:"quote"`
	Pillar           string    `json:"pillar,omitempty"`
	EmotionalInsight string    `json:"emotional_insight,omitempty"`
	Usable           bool      `json:"usable"`
	CreatedAt        time.Time `json:"created_at"`
}
