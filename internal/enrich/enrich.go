// Package enrich runs the interview enrichment pipeline: tagging, quote
// extraction, summarization and rescoring after a new transcript lands.
package enrich

import (
	"context"
	"time"

	"github.com/adamj-ops/liferx-sub001/internal/pipeline"
	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

// Request drives one enrichment run. InterviewID gates the transcript
// steps; GuestID gates rescoring. Either may be absent.
type Request struct {
	OrgID       string `json:"org_id"`
	InterviewID string `json:"interview_id"`
	GuestID     string `json:"guest_id"`
	AllowWrites bool   `json:"allowWrites"`
}

type Pipeline struct {
	runner *pipeline.Runner
}

func New(runner *pipeline.Runner) *Pipeline {
	return &Pipeline{runner: runner}
}

// Run executes every step whose subject id is present. Steps are
// best-effort; failures are recorded and the rest still run.
func (p *Pipeline) Run(ctx context.Context, req Request) *pipeline.Result {
	start := time.Now()
	rc := tools.RawContext{OrgID: req.OrgID, AllowWrites: req.AllowWrites}

	var steps []pipeline.StepResult
	if req.InterviewID != "" {
		steps = append(steps, p.runner.RunStep(ctx, "auto_tag", "interviews.auto_tag",
			map[string]any{"interview_id": req.InterviewID}, rc))
		steps = append(steps, p.runner.RunStep(ctx, "extract_quotes", "interviews.extract_quotes",
			map[string]any{"interview_id": req.InterviewID}, rc))
		steps = append(steps, p.runner.RunStep(ctx, "summarize", "interviews.summarize",
			map[string]any{"interview_id": req.InterviewID}, rc))
	}
	if req.GuestID != "" {
		steps = append(steps, p.runner.RunStep(ctx, "rescore", "scoring.score_guest",
			map[string]any{"guest_id": req.GuestID}, rc))
	}

	return p.runner.Complete("enrich", req.OrgID, start, steps)
}
