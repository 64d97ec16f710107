package brain

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	chromem "github.com/philippgille/chromem-go"
)

const (
	collectionName = "brain"
	embedderDims   = 128
)

// Index is an in-memory semantic index over brain items, rebuilt from
// the store at startup and kept current by the upsert tools.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewIndex creates an empty index using the deterministic local embedder.
func NewIndex() (*Index, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, hashEmbedding)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{db: db, collection: col}, nil
}

// Load bulk-indexes existing items, typically at startup.
func (ix *Index) Load(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(items))
	for i, it := range items {
		docs[i] = toDocument(it)
	}
	return ix.collection.AddDocuments(ctx, docs, 1)
}

// Add indexes or re-indexes one item.
func (ix *Index) Add(ctx context.Context, it Item) error {
	return ix.collection.AddDocument(ctx, toDocument(it))
}

// Search returns the most similar items for an org.
func (ix *Index) Search(ctx context.Context, orgID, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go requires nResults <= collection size.
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	where := map[string]string{"org_id": orgID}
	results, err := ix.collection.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]SearchHit, len(results))
	for i, r := range results {
		hits[i] = SearchHit{
			ID:         r.ID,
			ItemType:   r.Metadata["item_type"],
			Title:      r.Metadata["title"],
			Content:    r.Content,
			Similarity: r.Similarity,
		}
	}
	return hits, nil
}

func toDocument(it Item) chromem.Document {
	return chromem.Document{
		ID:      it.ID,
		Content: it.Title + "\n" + it.Content,
		Metadata: map[string]string{
			"org_id":    it.OrgID,
			"item_type": it.ItemType,
			"title":     it.Title,
		},
	}
}

// hashEmbedding is a deterministic bag-of-words embedding. It needs no
// external model, which keeps search usable offline; quality is enough
// for small org-scoped collections.
func hashEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, embedderDims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%embedderDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec, nil
}
