package tools

import (
	"context"
	"testing"
	"time"
)

const (
	testOrg    = "11111111-1111-1111-1111-111111111111"
	defaultOrg = "00000000-0000-0000-0000-000000000000"
)

func newTestGateway(handlers map[string]Handler) *Gateway {
	r := NewRegistry()
	for name, h := range handlers {
		r.Register(name, h)
	}
	return NewGateway(r, defaultOrg)
}

func TestDispatchUnknownTool(t *testing.T) {
	gw := newTestGateway(nil)

	res := gw.Dispatch(context.Background(), "nope.missing", nil, RawContext{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Code != CodeToolNotFound {
		t.Errorf("expected TOOL_NOT_FOUND, got %s", res.Error.Code)
	}

	res = gw.Dispatch(context.Background(), "", nil, RawContext{})
	if res.Error == nil || res.Error.Code != CodeToolNotFound {
		t.Error("expected TOOL_NOT_FOUND for empty name")
	}
}

// A malformed org id must be rejected before the handler runs.
func TestDispatchInvalidOrgSkipsHandler(t *testing.T) {
	invoked := false
	gw := newTestGateway(map[string]Handler{
		"echo": func(_ context.Context, _ map[string]any, _ *Context) *Result {
			invoked = true
			return OK(nil, nil)
		},
	})

	res := gw.Dispatch(context.Background(), "echo", nil, RawContext{OrgID: "not-a-uuid"})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Code != CodeInvalidOrgID {
		t.Errorf("expected INVALID_ORG_ID, got %s", res.Error.Code)
	}
	if invoked {
		t.Error("handler must not run with an invalid org id")
	}
}

func TestDispatchDefaultsOrg(t *testing.T) {
	var got string
	gw := newTestGateway(map[string]Handler{
		"echo": func(_ context.Context, _ map[string]any, tc *Context) *Result {
			got = tc.OrgID
			return OK(nil, nil)
		},
	})

	res := gw.Dispatch(context.Background(), "echo", nil, RawContext{})
	if !res.Success {
		t.Fatalf("dispatch failed: %+v", res.Error)
	}
	if got != defaultOrg {
		t.Errorf("expected default org, got %s", got)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	gw := newTestGateway(map[string]Handler{
		"boom": func(_ context.Context, _ map[string]any, _ *Context) *Result {
			panic("handler exploded")
		},
	})

	res := gw.Dispatch(context.Background(), "boom", nil, RawContext{OrgID: testOrg})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Code != CodeInternalError {
		t.Errorf("expected INTERNAL_ERROR, got %s", res.Error.Code)
	}
}

func TestDispatchPropagatesAllowWrites(t *testing.T) {
	var allow bool
	gw := newTestGateway(map[string]Handler{
		"echo": func(_ context.Context, _ map[string]any, tc *Context) *Result {
			allow = tc.AllowWrites
			return OK(nil, nil)
		},
	})

	gw.Dispatch(context.Background(), "echo", nil, RawContext{OrgID: testOrg, AllowWrites: false})
	if allow {
		t.Error("allowWrites=false must reach the handler unchanged")
	}
	gw.Dispatch(context.Background(), "echo", nil, RawContext{OrgID: testOrg, AllowWrites: true})
	if !allow {
		t.Error("allowWrites=true must reach the handler unchanged")
	}
}

type recordingObserver struct {
	tool    string
	success bool
	calls   int
}

func (o *recordingObserver) ToolDispatched(tool string, success bool, _ time.Duration) {
	o.tool = tool
	o.success = success
	o.calls++
}

func TestDispatchNotifiesObserver(t *testing.T) {
	gw := newTestGateway(map[string]Handler{
		"echo": func(_ context.Context, _ map[string]any, _ *Context) *Result {
			return OK(nil, nil)
		},
	})
	obs := &recordingObserver{}
	gw.SetObserver(obs)

	gw.Dispatch(context.Background(), "echo", nil, RawContext{OrgID: testOrg})
	if obs.calls != 1 || obs.tool != "echo" || !obs.success {
		t.Errorf("observer not notified correctly: %+v", obs)
	}

	// Failures notify too.
	gw.Dispatch(context.Background(), "missing", nil, RawContext{OrgID: testOrg})
	if obs.calls != 2 || obs.success {
		t.Errorf("observer missed failed dispatch: %+v", obs)
	}
}

// A tool registered read-only cannot smuggle writes through its result,
// and a write-capable tool cannot report writes on a dry run.
func TestDispatchEnforcesDeclaredCapability(t *testing.T) {
	misbehaving := func(_ context.Context, _ map[string]any, _ *Context) *Result {
		return OK(nil, nil, Write{Table: "guests", ID: "g-1", Op: "insert"})
	}

	r := NewRegistry()
	r.Register("sneaky.read", misbehaving)
	r.RegisterWrite("sneaky.write", misbehaving)
	gw := NewGateway(r, defaultOrg)

	res := gw.Dispatch(context.Background(), "sneaky.read", nil,
		RawContext{OrgID: testOrg, AllowWrites: true})
	if res.Success || res.Error.Code != CodeInternalError {
		t.Errorf("read-only tool reporting writes must fail, got %+v", res)
	}

	res = gw.Dispatch(context.Background(), "sneaky.write", nil,
		RawContext{OrgID: testOrg, AllowWrites: false})
	if res.Success || res.Error.Code != CodeInternalError {
		t.Errorf("write during dry run must fail, got %+v", res)
	}

	res = gw.Dispatch(context.Background(), "sneaky.write", nil,
		RawContext{OrgID: testOrg, AllowWrites: true})
	if !res.Success {
		t.Errorf("declared write with writes allowed must pass, got %+v", res)
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("b.two", nil)
	r.Register("a.one", nil)

	names := r.Names()
	if len(names) != 2 || names[0] != "a.one" || names[1] != "b.two" {
		t.Errorf("unexpected names: %v", names)
	}
}
