package brain

import (
	"context"
	"testing"

	"github.com/adamj-ops/liferx-sub001/internal/db"
)

const testOrg = "11111111-1111-1111-1111-111111111111"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestUpsertByNaturalKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, created, err := store.Upsert(ctx, Item{
		OrgID: testOrg, ItemType: TypeDecision, Title: "podcast cadence",
		Content: "Weekly releases.",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}

	id2, created, err := store.Upsert(ctx, Item{
		OrgID: testOrg, ItemType: TypeDecision, Title: "podcast cadence",
		Content: "Biweekly releases.",
	})
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if created || id2 != id {
		t.Errorf("expected update of same row, got created=%v id=%s vs %s", created, id2, id)
	}

	it, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if it.Content != "Biweekly releases." {
		t.Errorf("update not applied: %q", it.Content)
	}
}

func TestAppendContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, _, err := store.Upsert(ctx, Item{
		OrgID: testOrg, ItemType: TypeMemory, Title: "session notes", Content: "first",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := store.AppendContent(ctx, id, "second"); err != nil {
		t.Fatalf("AppendContent: %v", err)
	}
	it, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if it.Content != "first\nsecond" {
		t.Errorf("unexpected content: %q", it.Content)
	}

	if err := store.AppendContent(ctx, "missing", "x"); err == nil {
		t.Error("expected error appending to unknown item")
	}
}

func TestIndexSearchScopedByOrg(t *testing.T) {
	ix, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	ctx := context.Background()

	items := []Item{
		{ID: "1", OrgID: testOrg, ItemType: TypeNote, Title: "guest pipeline", Content: "scoring and outreach for podcast guests"},
		{ID: "2", OrgID: testOrg, ItemType: TypeNote, Title: "studio gear", Content: "microphone and camera inventory"},
		{ID: "3", OrgID: "other-org", ItemType: TypeNote, Title: "guest pipeline", Content: "scoring and outreach for podcast guests"},
	}
	if err := ix.Load(ctx, items); err != nil {
		t.Fatalf("Load: %v", err)
	}

	hits, err := ix.Search(ctx, testOrg, "outreach scoring guests", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected hits")
	}
	if hits[0].ID != "1" {
		t.Errorf("expected item 1 first, got %s", hits[0].ID)
	}
	for _, h := range hits {
		if h.ID == "3" {
			t.Error("search leaked across orgs")
		}
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	hits, err := ix.Search(context.Background(), testOrg, "anything", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits != nil {
		t.Errorf("expected nil hits on empty index, got %v", hits)
	}
}

func TestHashEmbeddingDeterministicAndNormalized(t *testing.T) {
	a, _ := hashEmbedding(context.Background(), "hello world")
	b, _ := hashEmbedding(context.Background(), "hello world")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("embedding not deterministic")
		}
	}

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if norm < 0.99 || norm > 1.01 {
		t.Errorf("expected unit norm, got %f", norm)
	}
}
