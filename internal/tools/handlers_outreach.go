package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/adamj-ops/liferx-sub001/internal/llm"
	"github.com/adamj-ops/liferx-sub001/internal/outreach"
)

func registerOutreachTools(r *Registry, d Deps) {
	r.RegisterWrite("outreach.log_event", handleLogEvent(d))
	r.Register("outreach.compose_message", handleComposeMessage(d))
	r.RegisterWrite("followups.create", handleCreateFollowup(d))
}

func handleLogEvent(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		guestID, ok := stringArg(args, "guest_id")
		if !ok {
			return missingArg("guest_id")
		}
		eventType, ok := stringArg(args, "event_type")
		if !ok {
			return missingArg("event_type")
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("log %s outreach event for guest %s", eventType, guestID),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"event_type": eventType}, explain)
		}

		id, err := d.Outreach.LogEvent(ctx, outreach.Event{
			OrgID:        tc.OrgID,
			GuestID:      guestID,
			EventType:    eventType,
			Channel:      optString(args, "channel"),
			CampaignType: optString(args, "campaign_type"),
			Status:       optString(args, "status"),
			Message:      optString(args, "message"),
		})
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		return OK(map[string]any{"id": id}, explain,
			Write{Table: "outreach_events", ID: id, Op: "insert"})
	}
}

// handleComposeMessage drafts an outreach message for a guest. Read-only;
// logging the send is a separate tool call.
func handleComposeMessage(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		guestID, ok := stringArg(args, "guest_id")
		if !ok {
			return missingArg("guest_id")
		}
		campaignType := optString(args, "campaign_type")
		if campaignType == "" {
			campaignType = outreach.CampaignPostRelease
		}

		g, err := d.Guests.Get(ctx, tc.OrgID, guestID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		persona, err := d.Guests.LatestPersona(ctx, tc.OrgID, guestID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}

		prompt := fmt.Sprintf("Draft a short, warm %s outreach message to %s", campaignType, g.Name)
		if g.Company != "" {
			prompt += fmt.Sprintf(" (%s)", g.Company)
		}
		if persona != nil && len(persona.PointOfViews) > 0 {
			prompt += fmt.Sprintf(". Reference their point of view: %q", persona.PointOfViews[0])
		}
		prompt += "."

		resp, err := d.LLM.Complete(ctx, llm.CompletionRequest{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: "You write concise, personal outreach messages. No subject line, no placeholders."},
				{Role: llm.RoleUser, Content: prompt},
			},
			Temperature: 0.7,
		})
		if err != nil {
			return Fail(CodeInternalError, fmt.Sprintf("compose failed: %v", err))
		}

		return OK(map[string]any{"message": resp.Content, "campaign_type": campaignType}, map[string]any{
			"reasoning": fmt.Sprintf("%s message for %s composed by %s provider", campaignType, g.Name, d.LLM.Name()),
			"model":     resp.Model,
			"tokens":    resp.TotalTokens(),
		})
	}
}

func handleCreateFollowup(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		relatedType, ok := stringArg(args, "related_type")
		if !ok {
			return missingArg("related_type")
		}
		relatedID, ok := stringArg(args, "related_id")
		if !ok {
			return missingArg("related_id")
		}
		action, ok := stringArg(args, "action")
		if !ok {
			return missingArg("action")
		}

		var dueAt *time.Time
		if raw := optString(args, "due_at"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return Fail(CodeInvalidArgs, fmt.Sprintf("due_at must be RFC3339: %v", err))
			}
			dueAt = &t
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("followup %q on %s %s", action, relatedType, relatedID),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"action": action}, explain)
		}

		id, err := d.Outreach.CreateFollowup(ctx, outreach.Followup{
			OrgID:       tc.OrgID,
			RelatedType: relatedType,
			RelatedID:   relatedID,
			Action:      action,
			DueAt:       dueAt,
			Priority:    optString(args, "priority"),
		})
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		return OK(map[string]any{"id": id}, explain,
			Write{Table: "followups", ID: id, Op: "insert"})
	}
}
