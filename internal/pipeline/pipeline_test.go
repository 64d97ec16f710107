package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

const testOrg = "11111111-1111-1111-1111-111111111111"

func newStubGateway() *tools.Gateway {
	r := tools.NewRegistry()
	r.RegisterWrite("stub.ok", func(_ context.Context, _ map[string]any, _ *tools.Context) *tools.Result {
		return tools.OK(map[string]any{"done": true}, nil,
			tools.Write{Table: "content_assets", ID: "asset-1", Op: "insert"})
	})
	r.Register("stub.fail", func(_ context.Context, _ map[string]any, _ *tools.Context) *tools.Result {
		return tools.Fail(tools.CodeInternalError, "boom")
	})
	return tools.NewGateway(r, testOrg)
}

func runSteps(t *testing.T, toolNames ...string) *Result {
	t.Helper()
	runner := NewRunner(newStubGateway())
	start := time.Now()

	var steps []StepResult
	for _, name := range toolNames {
		steps = append(steps, runner.RunStep(context.Background(), name, name, nil,
			tools.RawContext{OrgID: testOrg, AllowWrites: true}))
	}
	return Finalize("test", testOrg, start, steps)
}

func TestPartialSuccessIsSuccess(t *testing.T) {
	res := runSteps(t, "stub.fail", "stub.ok")
	if !res.Success {
		t.Error("one successful step must make the pipeline succeed")
	}
	if res.Succeeded != 1 || res.Failed != 1 {
		t.Errorf("unexpected counts: %d/%d", res.Succeeded, res.Failed)
	}
}

func TestAllFailedIsFailure(t *testing.T) {
	res := runSteps(t, "stub.fail", "stub.fail")
	if res.Success {
		t.Error("pipeline with only failed steps must fail")
	}
}

func TestZeroStepsIsSuccess(t *testing.T) {
	res := runSteps(t)
	if !res.Success {
		t.Error("pipeline with no steps must succeed")
	}
	if len(res.Steps) != 0 {
		t.Errorf("expected empty steps, got %d", len(res.Steps))
	}
}

func TestFailedStepDoesNotAbort(t *testing.T) {
	res := runSteps(t, "stub.fail", "stub.ok", "stub.ok")
	if len(res.Steps) != 3 {
		t.Fatalf("expected all 3 steps attempted, got %d", len(res.Steps))
	}
	if res.Steps[0].Success || !res.Steps[1].Success {
		t.Error("step outcomes recorded in order")
	}
}

func TestCreatedAssetsCollected(t *testing.T) {
	res := runSteps(t, "stub.ok", "stub.ok")
	if len(res.CreatedAssets) != 2 {
		t.Errorf("expected 2 created assets, got %v", res.CreatedAssets)
	}
}

func TestStepErrorPreserved(t *testing.T) {
	res := runSteps(t, "stub.fail")
	if res.Steps[0].Error == nil || res.Steps[0].Error.Code != tools.CodeInternalError {
		t.Errorf("expected step error preserved, got %+v", res.Steps[0].Error)
	}
}
