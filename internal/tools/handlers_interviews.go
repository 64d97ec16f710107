package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/adamj-ops/liferx-sub001/internal/interviews"
	"github.com/adamj-ops/liferx-sub001/internal/llm"
)

func registerInterviewTools(r *Registry, d Deps) {
	r.RegisterWrite("interviews.upsert_interview", handleInterviewUpsert(d))
	r.RegisterWrite("interviews.add_quote", handleAddQuote(d))
	r.RegisterWrite("interviews.auto_tag", handleAutoTag(d))
	r.RegisterWrite("interviews.extract_quotes", handleExtractQuotes(d))
	r.RegisterWrite("interviews.summarize", handleSummarize(d))
}

func handleInterviewUpsert(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		guestID, ok := stringArg(args, "guest_id")
		if !ok {
			return missingArg("guest_id")
		}
		title, ok := stringArg(args, "title")
		if !ok {
			return missingArg("title")
		}

		iv := interviews.Interview{
			ID:         optString(args, "id"),
			OrgID:      tc.OrgID,
			GuestID:    guestID,
			Title:      title,
			Status:     optString(args, "status"),
			Summary:    optString(args, "summary"),
			Transcript: optString(args, "transcript"),
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("upsert interview %q for guest %s", title, guestID),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"title": title}, explain)
		}

		id, created, err := d.Interviews.Upsert(ctx, iv)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		op := "update"
		if created {
			op = "insert"
		}
		return OK(map[string]any{"id": id, "created": created}, explain,
			Write{Table: "interviews", ID: id, Op: op})
	}
}

func handleAddQuote(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		interviewID, ok := stringArg(args, "interview_id")
		if !ok {
			return missingArg("interview_id")
		}
		guestID, ok := stringArg(args, "guest_id")
		if !ok {
			return missingArg("guest_id")
		}
		quote, ok := stringArg(args, "quote")
		if !ok {
			return missingArg("quote")
		}

		explain := map[string]any{
			"reasoning": "record a quotable passage against the interview",
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"quote": quote}, explain)
		}

		id, err := d.Interviews.AddQuote(ctx, interviews.Quote{
			OrgID:            tc.OrgID,
			InterviewID:      interviewID,
			GuestID:          guestID,
			Quote:            quote,
			Pillar:           optString(args, "pillar"),
			EmotionalInsight: optString(args, "emotional_insight"),
			Usable:           optBool(args, "usable", true),
		})
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		return OK(map[string]any{"id": id}, explain,
			Write{Table: "quotes", ID: id, Op: "insert"})
	}
}

// handleAutoTag derives tags from the interview text by keyword
// frequency. Deterministic so repeated runs converge.
func handleAutoTag(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		interviewID, ok := stringArg(args, "interview_id")
		if !ok {
			return missingArg("interview_id")
		}

		iv, err := d.Interviews.Get(ctx, tc.OrgID, interviewID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}

		tags := topKeywords(iv.Title+" "+iv.Summary+" "+iv.Transcript, 5)
		explain := map[string]any{
			"reasoning": fmt.Sprintf("keyword-frequency tags from title, summary and transcript: %v", tags),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"tags": tags}, explain)
		}

		if err := d.Interviews.SetTags(ctx, tc.OrgID, interviewID, tags); err != nil {
			return FailWithExplain(CodeInternalError, err.Error(), explain)
		}
		return OK(map[string]any{"tags": tags}, explain,
			Write{Table: "interviews", ID: interviewID, Op: "update"})
	}
}

// handleExtractQuotes scans the transcript for quotable sentences and
// records up to max_quotes of them.
func handleExtractQuotes(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		interviewID, ok := stringArg(args, "interview_id")
		if !ok {
			return missingArg("interview_id")
		}
		maxQuotes := optInt(args, "max_quotes", 5)

		iv, err := d.Interviews.Get(ctx, tc.OrgID, interviewID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		candidates := quotableSentences(iv.Transcript, maxQuotes)

		explain := map[string]any{
			"reasoning": fmt.Sprintf("selected %d quotable sentences from transcript", len(candidates)),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"quotes": candidates}, explain)
		}

		var writes []Write
		var ids []string
		for _, q := range candidates {
			id, err := d.Interviews.AddQuote(ctx, interviews.Quote{
				OrgID: tc.OrgID, InterviewID: interviewID, GuestID: iv.GuestID,
				Quote: q, Usable: true,
			})
			if err != nil {
				return FailWithExplain(CodeInternalError, err.Error(), explain)
			}
			ids = append(ids, id)
			writes = append(writes, Write{Table: "quotes", ID: id, Op: "insert"})
		}
		return OK(map[string]any{"quote_ids": ids, "count": len(ids)}, explain, writes...)
	}
}

func handleSummarize(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		interviewID, ok := stringArg(args, "interview_id")
		if !ok {
			return missingArg("interview_id")
		}

		iv, err := d.Interviews.Get(ctx, tc.OrgID, interviewID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		if iv.Transcript == "" {
			return Fail(CodeInvalidArgs, "interview has no transcript to summarize")
		}

		transcript := truncateText(iv.Transcript, 6000)
		resp, err := d.LLM.Complete(ctx, llm.CompletionRequest{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: "Summarize the interview transcript in 3-5 sentences focused on the guest's key points."},
				{Role: llm.RoleUser, Content: transcript},
			},
			Temperature: 0.3,
		})
		if err != nil {
			return Fail(CodeInternalError, fmt.Sprintf("summarization failed: %v", err))
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("summary produced by %s provider", d.LLM.Name()),
			"model":     resp.Model,
			"tokens":    resp.TotalTokens(),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"summary": resp.Content}, explain)
		}

		if err := d.Interviews.SetSummary(ctx, tc.OrgID, interviewID, resp.Content); err != nil {
			return FailWithExplain(CodeInternalError, err.Error(), explain)
		}
		return OK(map[string]any{"summary": resp.Content}, explain,
			Write{Table: "interviews", ID: interviewID, Op: "update"})
	}
}

var stopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "with": true,
	"for": true, "was": true, "are": true, "you": true, "but": true,
	"have": true, "not": true, "they": true, "what": true, "about": true,
	"when": true, "your": true, "from": true, "just": true, "like": true,
	"really": true, "there": true, "their": true, "would": true, "been": true,
	"were": true, "then": true, "them": true, "into": true, "because": true,
}

// topKeywords returns the n most frequent non-stopword terms, ties
// broken alphabetically for determinism.
func topKeywords(text string, n int) []string {
	counts := map[string]int{}
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(raw, ".,!?;:\"'()[]")
		if len(word) < 4 || stopwords[word] {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

// quotableSentences picks standalone sentences of quotable length.
func quotableSentences(transcript string, limit int) []string {
	var out []string
	for _, line := range strings.Split(transcript, "\n") {
		for _, sentence := range strings.Split(line, ". ") {
			s := strings.TrimSpace(sentence)
			if !strings.HasSuffix(s, ".") {
				s += "."
			}
			if len(s) < 40 || len(s) > 240 {
				continue
			}
			out = append(out, s)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}
