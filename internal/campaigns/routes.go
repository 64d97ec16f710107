package campaigns

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adamj-ops/liferx-sub001/internal/outreach"
	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

// RegisterRoutes mounts the outreach pipeline and candidate discovery
// under /api/pipelines/outreach.
func RegisterRoutes(r chi.Router, p *Pipeline, engine *outreach.Engine, defaultOrgID string, discoveryLimit int, auth tools.AuthConfig) {
	r.Route("/api/pipelines/outreach", func(r chi.Router) {
		r.Use(tools.RequireSecret(auth))
		r.Post("/", handleRun(p))
		r.Get("/discover", handleDiscover(engine, defaultOrgID, discoveryLimit))
	})
}

func handleRun(p *Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.OrgID == "" {
			http.Error(w, "org_id is required", http.StatusBadRequest)
			return
		}
		if req.GuestID == "" {
			http.Error(w, "guest_id is required", http.StatusBadRequest)
			return
		}

		result, err := p.Run(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleDiscover(engine *outreach.Engine, defaultOrgID string, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := r.URL.Query().Get("org_id")
		if orgID == "" {
			orgID = defaultOrgID
		}
		limit := defaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		candidates, err := engine.Discover(r.Context(), orgID, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if candidates == nil {
			candidates = []outreach.Candidate{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
