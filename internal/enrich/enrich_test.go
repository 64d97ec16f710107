package enrich

import (
	"context"
	"testing"

	"github.com/adamj-ops/liferx-sub001/internal/brain"
	"github.com/adamj-ops/liferx-sub001/internal/content"
	"github.com/adamj-ops/liferx-sub001/internal/db"
	"github.com/adamj-ops/liferx-sub001/internal/guests"
	"github.com/adamj-ops/liferx-sub001/internal/interviews"
	"github.com/adamj-ops/liferx-sub001/internal/llm"
	"github.com/adamj-ops/liferx-sub001/internal/outreach"
	"github.com/adamj-ops/liferx-sub001/internal/pipeline"
	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

const testOrg = "11111111-1111-1111-1111-111111111111"

type fixture struct {
	deps     tools.Deps
	pipeline *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	index, err := brain.NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	deps := tools.Deps{
		Guests:     guests.NewStore(database),
		Interviews: interviews.NewStore(database),
		Content:    content.NewStore(database),
		Renderer:   content.NewRenderer(),
		Outreach:   outreach.NewStore(database),
		Brain:      brain.NewStore(database),
		BrainIndex: index,
		LLM:        llm.NewLocalProvider(),
	}
	registry := tools.NewRegistry()
	tools.RegisterAll(registry, deps)

	return &fixture{
		deps:     deps,
		pipeline: New(pipeline.NewRunner(tools.NewGateway(registry, testOrg))),
	}
}

func (f *fixture) seed(t *testing.T) (guestID, ivID string) {
	t.Helper()
	ctx := context.Background()
	guestID, _, err := f.deps.Guests.Upsert(ctx, guests.Guest{OrgID: testOrg, Name: "Guest"})
	if err != nil {
		t.Fatalf("upserting guest: %v", err)
	}
	ivID, _, err = f.deps.Interviews.Upsert(ctx, interviews.Interview{
		OrgID: testOrg, GuestID: guestID, Title: "Episode",
		Transcript: `Habits compound when systems replace motivation in daily work.
The founders who last build routines that survive their worst weeks easily.`,
	})
	if err != nil {
		t.Fatalf("upserting interview: %v", err)
	}
	return guestID, ivID
}

func TestEnrichRunsAllSteps(t *testing.T) {
	f := newFixture(t)
	guestID, ivID := f.seed(t)

	res := f.pipeline.Run(context.Background(), Request{
		OrgID: testOrg, InterviewID: ivID, GuestID: guestID, AllowWrites: true,
	})
	if !res.Success {
		t.Fatalf("pipeline failed: %+v", res)
	}
	if len(res.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(res.Steps))
	}

	iv, err := f.deps.Interviews.Get(context.Background(), testOrg, ivID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(iv.Tags) == 0 {
		t.Error("expected tags written")
	}
	if iv.Summary == "" {
		t.Error("expected summary written")
	}

	score, err := f.deps.Guests.LatestScore(context.Background(), testOrg, guestID)
	if err != nil {
		t.Fatalf("LatestScore: %v", err)
	}
	if score == nil {
		t.Error("expected rescore to persist a score row")
	}
}

// Absent subject ids skip their steps; no subjects at all is an empty,
// successful run.
func TestEnrichSubsetBySubject(t *testing.T) {
	f := newFixture(t)
	guestID, _ := f.seed(t)

	res := f.pipeline.Run(context.Background(), Request{
		OrgID: testOrg, GuestID: guestID, AllowWrites: true,
	})
	if len(res.Steps) != 1 || res.Steps[0].Step != "rescore" {
		t.Fatalf("expected only rescore, got %+v", res.Steps)
	}

	empty := f.pipeline.Run(context.Background(), Request{OrgID: testOrg, AllowWrites: true})
	if len(empty.Steps) != 0 || !empty.Success {
		t.Errorf("expected empty successful run, got %+v", empty)
	}
}

// A failing step must not stop the others: summarizing an interview with
// no transcript fails while tagging and quote extraction still run.
func TestEnrichPartialSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guestID, _, err := f.deps.Guests.Upsert(ctx, guests.Guest{OrgID: testOrg, Name: "NoTranscript"})
	if err != nil {
		t.Fatalf("upserting guest: %v", err)
	}
	ivID, _, err := f.deps.Interviews.Upsert(ctx, interviews.Interview{
		OrgID: testOrg, GuestID: guestID, Title: "Silent episode",
	})
	if err != nil {
		t.Fatalf("upserting interview: %v", err)
	}

	res := f.pipeline.Run(ctx, Request{OrgID: testOrg, InterviewID: ivID, AllowWrites: true})
	if len(res.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(res.Steps))
	}

	var summarize *pipeline.StepResult
	for i := range res.Steps {
		if res.Steps[i].Step == "summarize" {
			summarize = &res.Steps[i]
		}
	}
	if summarize == nil || summarize.Success {
		t.Error("expected summarize step to fail without a transcript")
	}
	if !res.Success {
		t.Error("partial success must still be success")
	}
}
