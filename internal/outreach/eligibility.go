// Package outreach holds the outreach event/followup store and the
// eligibility engine that gates which guests may be contacted.
package outreach

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/adamj-ops/liferx-sub001/internal/guests"
	"github.com/adamj-ops/liferx-sub001/internal/interviews"
)

// Engine computes outreach eligibility for a guest from current store
// state. Three hard gates decide eligibility; the presence signals only
// annotate the verdict.
type Engine struct {
	guests     *guests.Store
	interviews *interviews.Store

	scoreThreshold    float64
	presenceThreshold float64
}

func NewEngine(g *guests.Store, iv *interviews.Store, scoreThreshold, presenceThreshold float64) *Engine {
	return &Engine{
		guests:            g,
		interviews:        iv,
		scoreThreshold:    scoreThreshold,
		presenceThreshold: presenceThreshold,
	}
}

// Evaluate runs the three hard gates and two soft signals for one guest.
// A gate whose backing record is missing fails with a nil value.
func (e *Engine) Evaluate(ctx context.Context, orgID, guestID string) (*Eligibility, error) {
	guest, err := e.guests.Get(ctx, orgID, guestID)
	if err != nil {
		return nil, fmt.Errorf("loading guest: %w", err)
	}

	result := &Eligibility{
		HasChannelPresence: guest.HasChannelPresence,
		PresenceStrength:   guest.PresenceStrength,
		PresenceStrong:     guest.PresenceStrength >= e.presenceThreshold,
	}

	score, err := e.guests.LatestScore(ctx, orgID, guestID)
	if err != nil {
		return nil, fmt.Errorf("reading latest score: %w", err)
	}
	if score == nil {
		result.ScoreGate = Gate{Passed: false, Value: nil}
		result.Reasons = append(result.Reasons, "no score recorded")
	} else {
		v := score.Score
		result.ScoreGate = Gate{Passed: v >= e.scoreThreshold, Value: &v}
		if result.ScoreGate.Passed {
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("score %.0f meets threshold %.0f", v, e.scoreThreshold))
		} else {
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("score %.0f below threshold %.0f", v, e.scoreThreshold))
		}
	}

	persona, err := e.guests.LatestPersona(ctx, orgID, guestID)
	if err != nil {
		return nil, fmt.Errorf("reading latest persona: %w", err)
	}
	if persona == nil {
		result.PersonaGate = Gate{Passed: false, Value: nil}
		result.Reasons = append(result.Reasons, "no persona recorded")
	} else {
		n := float64(len(persona.PointOfViews))
		result.PersonaGate = Gate{Passed: n >= 1, Value: &n}
		if result.PersonaGate.Passed {
			result.Reasons = append(result.Reasons, fmt.Sprintf("%d persona point(s) of view", len(persona.PointOfViews)))
		} else {
			result.Reasons = append(result.Reasons, "persona has no points of view")
		}
	}

	usable, err := e.interviews.CountUsableByGuest(ctx, orgID, guestID)
	if err != nil {
		return nil, fmt.Errorf("counting usable quotes: %w", err)
	}
	q := float64(usable)
	result.QuoteGate = Gate{Passed: usable >= 1, Value: &q}
	if result.QuoteGate.Passed {
		result.Reasons = append(result.Reasons, fmt.Sprintf("%d usable quote(s)", usable))
	} else {
		result.Reasons = append(result.Reasons, "no usable quotes")
	}

	if result.HasChannelPresence {
		result.Reasons = append(result.Reasons, "bonus: has channel presence")
	}
	if result.PresenceStrong {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("bonus: presence strength %.0f meets threshold %.0f",
				result.PresenceStrength, e.presenceThreshold))
	}

	result.Eligible = result.ScoreGate.Passed && result.PersonaGate.Passed && result.QuoteGate.Passed

	log.Debug().
		Str("guest_id", guestID).
		Bool("eligible", result.Eligible).
		Bool("score_gate", result.ScoreGate.Passed).
		Bool("persona_gate", result.PersonaGate.Passed).
		Bool("quote_gate", result.QuoteGate.Passed).
		Msg("eligibility evaluated")

	return result, nil
}

// Discover scans guests whose latest score meets the threshold and
// returns those that pass full eligibility, capped at limit.
func (e *Engine) Discover(ctx context.Context, orgID string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 50
	}

	candidates, err := e.guests.ListAboveScore(ctx, orgID, e.scoreThreshold, limit)
	if err != nil {
		return nil, fmt.Errorf("scanning guests above threshold: %w", err)
	}

	var out []Candidate
	for _, g := range candidates {
		if len(out) >= limit {
			break
		}
		elig, err := e.Evaluate(ctx, orgID, g.ID)
		if err != nil {
			log.Warn().Err(err).Str("guest_id", g.ID).Msg("skipping guest in discovery")
			continue
		}
		if !elig.Eligible {
			continue
		}
		out = append(out, Candidate{GuestID: g.ID, Name: g.Name, Eligibility: elig})
	}
	return out, nil
}
