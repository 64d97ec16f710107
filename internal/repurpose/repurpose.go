// Package repurpose turns interview material into content assets: quote
// cards fanned out over recent quotes, one script, and post ideas.
package repurpose

import (
	"context"
	"time"

	"github.com/adamj-ops/liferx-sub001/internal/interviews"
	"github.com/adamj-ops/liferx-sub001/internal/pipeline"
	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

// Request drives one repurposing run. ThemeID is optional and carried
// into the quote card and script steps when present.
type Request struct {
	OrgID       string `json:"org_id"`
	InterviewID string `json:"interview_id"`
	ThemeID     string `json:"theme_id"`
	AllowWrites bool   `json:"allowWrites"`
}

type Pipeline struct {
	runner        *pipeline.Runner
	interviews    *interviews.Store
	maxQuoteCards int
}

func New(runner *pipeline.Runner, ivStore *interviews.Store, maxQuoteCards int) *Pipeline {
	if maxQuoteCards <= 0 {
		maxQuoteCards = 3
	}
	return &Pipeline{runner: runner, interviews: ivStore, maxQuoteCards: maxQuoteCards}
}

// Run fetches up to maxQuoteCards recent quotes, generates one quote
// card per quote, one script against the most recent quote, and a post
// ideas batch. Every sub-step is independent.
func (p *Pipeline) Run(ctx context.Context, req Request) (*pipeline.Result, error) {
	start := time.Now()
	rc := tools.RawContext{OrgID: req.OrgID, AllowWrites: req.AllowWrites}

	quotes, err := p.interviews.RecentQuotes(ctx, req.OrgID, req.InterviewID, p.maxQuoteCards)
	if err != nil {
		return nil, err
	}

	var steps []pipeline.StepResult
	for _, q := range quotes {
		steps = append(steps, p.runner.RunStep(ctx, "quote_card", "content.generate_quote_card",
			map[string]any{"quote_id": q.ID, "theme_id": req.ThemeID}, rc))
	}
	if len(quotes) > 0 {
		steps = append(steps, p.runner.RunStep(ctx, "script", "content.generate_script",
			map[string]any{"quote_id": quotes[0].ID, "theme_id": req.ThemeID}, rc))
	}
	steps = append(steps, p.runner.RunStep(ctx, "post_ideas", "content.generate_post_ideas",
		map[string]any{"interview_id": req.InterviewID}, rc))

	return p.runner.Complete("repurpose", req.OrgID, start, steps), nil
}
