package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

// StepResult records one dispatched tool call. Produced once per step,
// immutable, never persisted on its own.
type StepResult struct {
	Step           string         `json:"step"`
	Tool           string         `json:"tool"`
	Success        bool           `json:"success"`
	Data           map[string]any `json:"data,omitempty"`
	Error          *tools.Error   `json:"error,omitempty"`
	Explainability map[string]any `json:"explainability,omitempty"`
	Writes         []tools.Write  `json:"writes"`
	DurationMS     int64          `json:"duration_ms"`
}

// Result aggregates a full pipeline invocation.
type Result struct {
	Pipeline      string       `json:"pipeline"`
	OrgID         string       `json:"org_id"`
	Steps         []StepResult `json:"steps"`
	Succeeded     int          `json:"succeeded"`
	Failed        int          `json:"failed"`
	CreatedAssets []string     `json:"created_assets"`
	Success       bool         `json:"success"`
	DurationMS    int64        `json:"duration_ms"`
}

// Observer is notified when a pipeline run completes. Implementations
// must not block.
type Observer interface {
	PipelineFinished(name string, success bool, succeeded, failed int)
}

// Runner dispatches pipeline steps through the tool gateway.
type Runner struct {
	gw       *tools.Gateway
	observer Observer
}

func NewRunner(gw *tools.Gateway) *Runner {
	return &Runner{gw: gw}
}

// SetObserver attaches a completion observer. Call before serving traffic.
func (r *Runner) SetObserver(o Observer) {
	r.observer = o
}

// Complete computes the aggregate verdict for a run and notifies the
// observer, if any.
func (r *Runner) Complete(name, orgID string, start time.Time, steps []StepResult) *Result {
	result := Finalize(name, orgID, start, steps)
	if r.observer != nil {
		r.observer.PipelineFinished(name, result.Success, result.Succeeded, result.Failed)
	}
	return result
}

// RunStep dispatches one tool and wraps the outcome. Failures are
// recorded, never propagated; the pipeline always attempts every step.
func (r *Runner) RunStep(ctx context.Context, step, tool string, args map[string]any, rc tools.RawContext) StepResult {
	start := time.Now()
	res := r.gw.Dispatch(ctx, tool, args, rc)
	elapsed := time.Since(start)

	log.Info().
		Str("step", step).
		Str("tool", tool).
		Bool("success", res.Success).
		Dur("duration", elapsed).
		Msg("pipeline step")

	return StepResult{
		Step:           step,
		Tool:           tool,
		Success:        res.Success,
		Data:           res.Data,
		Error:          res.Error,
		Explainability: res.Explainability,
		Writes:         res.Writes,
		DurationMS:     elapsed.Milliseconds(),
	}
}

// Finalize computes the aggregate verdict. Zero steps is a success, and
// one successful step is enough: partial success is success.
func Finalize(name, orgID string, start time.Time, steps []StepResult) *Result {
	result := &Result{
		Pipeline:      name,
		OrgID:         orgID,
		Steps:         steps,
		CreatedAssets: []string{},
		DurationMS:    time.Since(start).Milliseconds(),
	}
	if steps == nil {
		result.Steps = []StepResult{}
	}

	for _, s := range steps {
		if s.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
		for _, w := range s.Writes {
			if w.Table == "content_assets" {
				result.CreatedAssets = append(result.CreatedAssets, w.ID)
			}
		}
	}
	result.Success = len(steps) == 0 || result.Succeeded > 0

	log.Info().
		Str("pipeline", name).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Bool("success", result.Success).
		Int64("duration_ms", result.DurationMS).
		Msg("pipeline finished")
	return result
}
