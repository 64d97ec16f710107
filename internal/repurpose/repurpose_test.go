package repurpose

import (
	"context"
	"fmt"
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
	interviews *interviews.Store
	content    *content.Store
	runner     *pipeline.Runner
	guestID    string
	ivID       string
}

func newFixture(t *testing.T, quoteCount int) *fixture {
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

	ctx := context.Background()
	guestID, _, err := deps.Guests.Upsert(ctx, guests.Guest{OrgID: testOrg, Name: "Guest"})
	if err != nil {
		t.Fatalf("upserting guest: %v", err)
	}
	ivID, _, err := deps.Interviews.Upsert(ctx, interviews.Interview{
		OrgID: testOrg, GuestID: guestID, Title: "Episode",
		Transcript: "A long talk about systems and habits that compound over years.",
	})
	if err != nil {
		t.Fatalf("upserting interview: %v", err)
	}
	for i := 0; i < quoteCount; i++ {
		_, err := deps.Interviews.AddQuote(ctx, interviews.Quote{
			OrgID: testOrg, InterviewID: ivID, GuestID: guestID,
			Quote: fmt.Sprintf("quotable line %d", i), Usable: true,
		})
		if err != nil {
			t.Fatalf("adding quote %d: %v", i, err)
		}
	}

	return &fixture{
		interviews: deps.Interviews,
		content:    deps.Content,
		runner:     pipeline.NewRunner(tools.NewGateway(registry, testOrg)),
		guestID:    guestID,
		ivID:       ivID,
	}
}

// Five quotes with a cap of two must produce exactly two quote card
// steps and one script step referencing the first capped quote.
func TestFanOutRespectsCap(t *testing.T) {
	f := newFixture(t, 5)
	p := New(f.runner, f.interviews, 2)

	res, err := p.Run(context.Background(), Request{
		OrgID: testOrg, InterviewID: f.ivID, AllowWrites: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var cards, scripts int
	for _, s := range res.Steps {
		switch s.Step {
		case "quote_card":
			cards++
		case "script":
			scripts++
		}
	}
	if cards != 2 {
		t.Errorf("expected 2 quote card steps, got %d", cards)
	}
	if scripts != 1 {
		t.Errorf("expected 1 script step, got %d", scripts)
	}

	// The script must be built from the most recent quote of the capped
	// fetch.
	recent, err := f.interviews.RecentQuotes(context.Background(), testOrg, f.ivID, 2)
	if err != nil {
		t.Fatalf("RecentQuotes: %v", err)
	}
	assets, err := f.content.ListByKind(context.Background(), testOrg, content.KindScript, 5)
	if err != nil {
		t.Fatalf("ListByKind: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("expected 1 script asset, got %d", len(assets))
	}
	if assets[0].SourceID != recent[0].ID {
		t.Errorf("script built from %s, expected most recent quote %s", assets[0].SourceID, recent[0].ID)
	}
}

// With no quotes, only the post ideas step runs; the pipeline still
// succeeds.
func TestNoQuotesSkipsCardAndScript(t *testing.T) {
	f := newFixture(t, 0)
	p := New(f.runner, f.interviews, 3)

	res, err := p.Run(context.Background(), Request{
		OrgID: testOrg, InterviewID: f.ivID, AllowWrites: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Steps) != 1 || res.Steps[0].Step != "post_ideas" {
		t.Fatalf("expected only post_ideas step, got %+v", res.Steps)
	}
	if !res.Success {
		t.Error("expected success")
	}
}

func TestThemeCarriedIntoAssets(t *testing.T) {
	f := newFixture(t, 1)
	p := New(f.runner, f.interviews, 3)

	_, err := p.Run(context.Background(), Request{
		OrgID: testOrg, InterviewID: f.ivID, ThemeID: "theme-7", AllowWrites: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cards, err := f.content.ListByKind(context.Background(), testOrg, content.KindQuoteCard, 5)
	if err != nil {
		t.Fatalf("ListByKind: %v", err)
	}
	if len(cards) != 1 || cards[0].ThemeID != "theme-7" {
		t.Errorf("expected theme carried into quote card, got %+v", cards)
	}
}

func TestDryRunCreatesNothing(t *testing.T) {
	f := newFixture(t, 3)
	p := New(f.runner, f.interviews, 3)

	res, err := p.Run(context.Background(), Request{
		OrgID: testOrg, InterviewID: f.ivID, AllowWrites: false,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success {
		t.Error("dry run should still succeed")
	}
	if len(res.CreatedAssets) != 0 {
		t.Errorf("dry run created assets: %v", res.CreatedAssets)
	}

	assets, err := f.content.ListByKind(context.Background(), testOrg, content.KindQuoteCard, 10)
	if err != nil {
		t.Fatalf("ListByKind: %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("dry run persisted %d assets", len(assets))
	}
}
