package tools

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/adamj-ops/liferx-sub001/internal/brain"
)

func registerBrainTools(r *Registry, d Deps) {
	r.RegisterWrite("brain.upsert_item", handleBrainUpsert(d))
	r.RegisterWrite("brain.record_decision", handleBrainRecordDecision(d))
	r.RegisterWrite("brain.append_memory", handleBrainAppendMemory(d))
	r.Register("brain.search", handleBrainSearch(d))
}

func handleBrainUpsert(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		title, ok := stringArg(args, "title")
		if !ok {
			return missingArg("title")
		}
		item := brain.Item{
			OrgID:    tc.OrgID,
			ItemType: optString(args, "type"),
			Title:    title,
			Content:  optString(args, "content"),
		}
		if meta, ok := args["metadata"].(map[string]any); ok {
			item.Metadata = make(map[string]string, len(meta))
			for k, v := range meta {
				item.Metadata[k] = fmt.Sprintf("%v", v)
			}
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("upsert brain item %q keyed by (org, type, title)", title),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"title": title, "type": item.ItemType}, explain)
		}

		id, created, err := d.Brain.Upsert(ctx, item)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		item.ID = id
		indexItem(ctx, d, item)

		op := "update"
		if created {
			op = "insert"
		}
		return OK(map[string]any{"id": id, "created": created}, explain,
			Write{Table: "brain_items", ID: id, Op: op})
	}
}

func handleBrainRecordDecision(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		title, ok := stringArg(args, "title")
		if !ok {
			return missingArg("title")
		}
		decision, ok := stringArg(args, "decision")
		if !ok {
			return missingArg("decision")
		}

		var b strings.Builder
		b.WriteString(decision)
		if rationale := optString(args, "rationale"); rationale != "" {
			b.WriteString("\n\nRationale: " + rationale)
		}
		if alts := optString(args, "alternatives_considered"); alts != "" {
			b.WriteString("\n\nAlternatives considered: " + alts)
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("record decision %q with rationale and alternatives", title),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"title": title}, explain)
		}

		item := brain.Item{OrgID: tc.OrgID, ItemType: brain.TypeDecision, Title: title, Content: b.String()}
		id, created, err := d.Brain.Upsert(ctx, item)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		item.ID = id
		indexItem(ctx, d, item)

		op := "update"
		if created {
			op = "insert"
		}
		return OK(map[string]any{"id": id, "created": created}, explain,
			Write{Table: "brain_items", ID: id, Op: op})
	}
}

func handleBrainAppendMemory(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		key, ok := stringArg(args, "key")
		if !ok {
			return missingArg("key")
		}
		value, ok := stringArg(args, "value")
		if !ok {
			return missingArg("value")
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("append to memory %q, creating it if absent", key),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"key": key}, explain)
		}

		existing, err := d.Brain.GetByKey(ctx, tc.OrgID, brain.TypeMemory, key)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return Fail(CodeInternalError, err.Error())
		}

		if existing != nil {
			if err := d.Brain.AppendContent(ctx, existing.ID, value); err != nil {
				return Fail(CodeInternalError, err.Error())
			}
			return OK(map[string]any{"id": existing.ID, "created": false}, explain,
				Write{Table: "brain_items", ID: existing.ID, Op: "update"})
		}

		item := brain.Item{OrgID: tc.OrgID, ItemType: brain.TypeMemory, Title: key, Content: value}
		id, _, err := d.Brain.Upsert(ctx, item)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		item.ID = id
		indexItem(ctx, d, item)
		return OK(map[string]any{"id": id, "created": true}, explain,
			Write{Table: "brain_items", ID: id, Op: "insert"})
	}
}

func handleBrainSearch(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		query, ok := stringArg(args, "query")
		if !ok {
			return missingArg("query")
		}
		limit := optInt(args, "limit", 10)

		hits, err := d.BrainIndex.Search(ctx, tc.OrgID, query, limit)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		if hits == nil {
			hits = []brain.SearchHit{}
		}
		return OK(map[string]any{"hits": hits}, map[string]any{
			"reasoning": fmt.Sprintf("semantic search over org brain items, top %d", limit),
		})
	}
}

// indexItem keeps the semantic index current. Index failures are logged
// and ignored; the store row is the source of truth.
func indexItem(ctx context.Context, d Deps, item brain.Item) {
	if d.BrainIndex == nil {
		return
	}
	if err := d.BrainIndex.Add(ctx, item); err != nil {
		log.Warn().Err(err).Str("item_id", item.ID).Msg("failed to index brain item")
	}
}
