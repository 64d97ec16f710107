// Package campaigns runs the outreach campaign pipeline: eligibility
// first, then compose, log and followup steps for guests that clear the
// gates. It sits above the outreach store and eligibility engine so the
// tool layer can depend on those without depending on the runner.
package campaigns

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adamj-ops/liferx-sub001/internal/outreach"
	"github.com/adamj-ops/liferx-sub001/internal/pipeline"
	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

// Request drives one outreach run for a single guest.
type Request struct {
	OrgID       string `json:"org_id"`
	GuestID     string `json:"guest_id"`
	Campaign    string `json:"campaign"`
	Force       bool   `json:"force"`
	AllowWrites bool   `json:"allowWrites"`
}

// RunResult is the pipeline outcome plus the eligibility verdict. The
// verdict is always the computed one, even when force overrode it.
type RunResult struct {
	*pipeline.Result
	Eligibility *outreach.Eligibility `json:"eligibility"`
	Forced      bool                  `json:"forced,omitempty"`
	Skipped     bool                  `json:"skipped,omitempty"`
}

// Pipeline composes and logs outreach for eligible guests.
type Pipeline struct {
	runner *pipeline.Runner
	engine *outreach.Engine
}

func NewPipeline(runner *pipeline.Runner, engine *outreach.Engine) *Pipeline {
	return &Pipeline{runner: runner, engine: engine}
}

// Run evaluates eligibility, then composes a message, logs the outreach
// event and creates a reply followup. An ineligible guest skips the
// steps unless Force is set.
func (p *Pipeline) Run(ctx context.Context, req Request) (*RunResult, error) {
	start := time.Now()
	if req.Campaign == "" {
		req.Campaign = outreach.CampaignPostRelease
	}

	elig, err := p.engine.Evaluate(ctx, req.OrgID, req.GuestID)
	if err != nil {
		return nil, err
	}

	out := &RunResult{Eligibility: elig}
	if !elig.Eligible {
		if !req.Force {
			out.Skipped = true
			out.Result = p.runner.Complete("outreach", req.OrgID, start, nil)
			return out, nil
		}
		out.Forced = true
		log.Warn().
			Str("guest_id", req.GuestID).
			Strs("reasons", elig.Reasons).
			Msg("outreach forced past failed eligibility")
	}

	if req.Campaign == outreach.CampaignContributorInvite {
		log.Info().
			Str("guest_id", req.GuestID).
			Bool("channel_presence", elig.HasChannelPresence).
			Bool("presence_strong", elig.PresenceStrong).
			Msg("contributor invite bonus signals")
	}

	rc := tools.RawContext{OrgID: req.OrgID, AllowWrites: req.AllowWrites}
	var steps []pipeline.StepResult

	compose := p.runner.RunStep(ctx, "compose", "outreach.compose_message",
		map[string]any{"guest_id": req.GuestID, "campaign_type": req.Campaign}, rc)
	steps = append(steps, compose)

	message, _ := compose.Data["message"].(string)
	steps = append(steps, p.runner.RunStep(ctx, "log_event", "outreach.log_event", map[string]any{
		"guest_id":      req.GuestID,
		"event_type":    "message_composed",
		"campaign_type": req.Campaign,
		"message":       message,
	}, rc))

	steps = append(steps, p.runner.RunStep(ctx, "followup", "followups.create", map[string]any{
		"related_type": "guest",
		"related_id":   req.GuestID,
		"action":       "check for reply",
		"due_at":       time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
	}, rc))

	out.Result = p.runner.Complete("outreach", req.OrgID, start, steps)
	return out, nil
}
