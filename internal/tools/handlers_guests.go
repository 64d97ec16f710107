package tools

import (
	"context"
	"fmt"

	"github.com/adamj-ops/liferx-sub001/internal/guests"
)

func registerGuestTools(r *Registry, d Deps) {
	r.RegisterWrite("guests.upsert_guest", handleGuestUpsert(d))
	r.RegisterWrite("scoring.score_guest", handleScoreGuest(d))
}

func handleGuestUpsert(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		name, ok := stringArg(args, "name")
		if !ok {
			return missingArg("name")
		}

		g := guests.Guest{
			OrgID:              tc.OrgID,
			Name:               name,
			Email:              optString(args, "email"),
			Company:            optString(args, "company"),
			Pillar:             optString(args, "pillar"),
			UniquePOV:          optString(args, "unique_pov"),
			HasChannelPresence: optBool(args, "has_channel_presence", false),
			PresenceStrength:   optFloat(args, "presence_strength", 0),
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("upsert guest %q keyed by (org, name)", name),
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"name": name}, explain)
		}

		id, created, err := d.Guests.Upsert(ctx, g)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		op := "update"
		if created {
			op = "insert"
		}
		return OK(map[string]any{"id": id, "created": created}, explain,
			Write{Table: "guests", ID: id, Op: op})
	}
}

// handleScoreGuest computes a deterministic guest score from stored
// signals and records it as a new score row.
func handleScoreGuest(d Deps) Handler {
	return func(ctx context.Context, args map[string]any, tc *Context) *Result {
		guestID, ok := stringArg(args, "guest_id")
		if !ok {
			return missingArg("guest_id")
		}
		scoreType := optString(args, "score_type")
		if scoreType == "" {
			scoreType = "overall"
		}

		g, err := d.Guests.Get(ctx, tc.OrgID, guestID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		usable, err := d.Interviews.CountUsableByGuest(ctx, tc.OrgID, guestID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}
		persona, err := d.Guests.LatestPersona(ctx, tc.OrgID, guestID)
		if err != nil {
			return Fail(CodeInternalError, err.Error())
		}

		factors := map[string]float64{}

		// Quote material: up to 40 points, 10 per usable quote.
		factors["quote_material"] = min(float64(usable)*10, 40)

		// Point-of-view clarity: up to 30 points.
		var povs int
		if persona != nil {
			povs = len(persona.PointOfViews)
		}
		factors["pov_clarity"] = min(float64(povs)*15, 30)

		// Reach: presence flag plus strength, up to 30 points.
		reach := 0.0
		if g.HasChannelPresence {
			reach = 10
		}
		reach += min(g.PresenceStrength/5, 20)
		factors["audience_reach"] = reach

		total := 0.0
		for _, v := range factors {
			total += v
		}
		if total > 100 {
			total = 100
		}

		explain := map[string]any{
			"reasoning": fmt.Sprintf("scored guest %q from %d usable quotes, %d POVs, presence %.0f",
				g.Name, usable, povs, g.PresenceStrength),
			"factors": factors,
		}
		if !tc.AllowWrites {
			return DryRun(map[string]any{"score": total, "score_type": scoreType}, explain)
		}

		id, err := d.Guests.AddScore(ctx, guests.Score{
			OrgID: tc.OrgID, GuestID: guestID, ScoreType: scoreType,
			Score: total, Factors: factors,
		})
		if err != nil {
			return FailWithExplain(CodeInternalError, err.Error(), explain)
		}
		return OK(map[string]any{"id": id, "score": total, "score_type": scoreType}, explain,
			Write{Table: "guest_scores", ID: id, Op: "insert"})
	}
}
