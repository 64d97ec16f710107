package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/adamj-ops/liferx-sub001/internal/content"
	"github.com/adamj-ops/liferx-sub001/internal/llm"
)

func registerContentTools(r *Registry, d Deps) {
	r.RegisterWrite("content.generate_quote_card", handleGenerateQuoteCard(d))
	r.RegisterWrite("content.generate_script", handleGenerateScript(d))
	r.RegisterWrite("content.generate_post_ideas", handleGeneratePostIdeas(d))
}

// handleGenerateQuoteCard renders one quote into a shareable card body.
func handleGenerateQuoteCard(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		quoteID, ok := stringArg(args, "quote_id")
		if !ok {
			return missingArg("quote_id")
		}
		themeID := optString(args, "theme_id")

		q, err := d.Interviews.GetQuote(ctx, tc.OrgID, quoteID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		g, err := d.Guests.Get(ctx, tc.OrgID, q.GuestID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}

		var b strings.Builder
		fmt.Fprintf(&b, "> %s\n>\n> — %s", q.Quote, g.Name)
		if g.Company != "" {
			fmt.Fprintf(&b, ", %s", g.Company)
		}
		if q.Pillar != "" {
			fmt.Fprintf(&b, "\n\n**%s**", q.Pillar)
		}
		body := b.String()

		html := ""
		if d.Renderer != nil {
			html, err = d.Renderer.Render(body)
			if err != nil {
				log.Warn().Err(err).Str("quote_id", quoteID).Msg("quote card render failed")
			}
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("quote card for %s from quote %s", g.Name, quoteID),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"body": body}, explain)
		}

		id, err := d.Content.Add(ctx, content.Asset{
			OrgID: tc.OrgID, Kind: content.KindQuoteCard,
			SourceType: "quote", SourceID: quoteID,
			ThemeID: themeID, Body: body, HTML: html,
		})
		if err != nil {
			return FailWithExplain(CodeInternalError, err.Error(), explain)
		}
		return OK(map[string]any{"id": id, "body": body}, explain,
			Write{Table: "content_assets", ID: id, Op: "insert"})
	}
}

// handleGenerateScript drafts a short-form video script around a quote.
func handleGenerateScript(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		quoteID, ok := stringArg(args, "quote_id")
		if !ok {
			return missingArg("quote_id")
		}
		themeID := optString(args, "theme_id")

		q, err := d.Interviews.GetQuote(ctx, tc.OrgID, quoteID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}

		prompt := fmt.Sprintf("Write a 30-second short-form video script built around this quote: %q", q.Quote)
		if themeID != "" {
			prompt += fmt.Sprintf(" Match theme %s.", themeID)
		}
		resp, err := d.LLM.Complete(ctx, llm.CompletionRequest{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: "You write punchy short-form video scripts with a hook, body and call to action."},
				{Role: llm.RoleUser, Content: prompt},
			},
			Temperature: 0.7,
		})
		if err != nil {
			return Fail(CodeInternalError, fmt.Sprintf("script generation failed: %v", err))
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("script drafted by %s provider from quote %s", d.LLM.Name(), quoteID),
			"model":     resp.Model,
			"tokens":    resp.TotalTokens(),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"body": resp.Content}, explain)
		}

		id, err := d.Content.Add(ctx, content.Asset{
			OrgID: tc.OrgID, Kind: content.KindScript,
			SourceType: "quote", SourceID: quoteID,
			ThemeID: themeID, Body: resp.Content,
		})
		if err != nil {
			return FailWithExplain(CodeInternalError, err.Error(), explain)
		}
		return OK(map[string]any{"id": id}, explain,
			Write{Table: "content_assets", ID: id, Op: "insert"})
	}
}

// handleGeneratePostIdeas produces post ideas from an interview, one
// asset per idea.
func handleGeneratePostIdeas(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		interviewID, ok := stringArg(args, "interview_id")
		if !ok {
			return missingArg("interview_id")
		}
		count := optInt(args, "count", 3)

		iv, err := d.Interviews.Get(ctx, tc.OrgID, interviewID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}

		source := iv.Summary
		if source == "" {
			source = iv.Transcript
		}
		source = truncateText(source, 4000)
		resp, err := d.LLM.Complete(ctx, llm.CompletionRequest{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: fmt.Sprintf("Suggest %d social post ideas from this interview, one per line.", count)},
				{Role: llm.RoleUser, Content: source},
			},
			Temperature: 0.8,
		})
		if err != nil {
			return Fail(CodeInternalError, fmt.Sprintf("idea generation failed: %v", err))
		}

		ideas := splitIdeas(resp.Content, count)
		explain := map[string]any{
			"reasoning": fmt.Sprintf("%d post ideas from interview %s via %s provider", len(ideas), interviewID, d.LLM.Name()),
			"model":     resp.Model,
			"tokens":    resp.TotalTokens(),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"ideas": ideas}, explain)
		}

		var writes []Write
		var ids []string
		for _, idea := range ideas {
			id, err := d.Content.Add(ctx, content.Asset{
				OrgID: tc.OrgID, Kind: content.KindPostIdea,
				SourceType: "interview", SourceID: interviewID, Body: idea,
			})
			if err != nil {
				return FailWithExplain(CodeInternalError, err.Error(), explain)
			}
			ids = append(ids, id)
			writes = append(writes, Write{Table: "content_assets", ID: id, Op: "insert"})
		}
		return OK(map[string]any{"ids": ids, "ideas": ideas}, explain, writes...)
	}
}

func splitIdeas(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) >= limit {
			break
		}
	}
	return out
}
