package repurpose

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

// RegisterRoutes mounts the repurposing pipeline under /api/pipelines.
func RegisterRoutes(r chi.Router, p *Pipeline, auth tools.AuthConfig) {
	r.Route("/api/pipelines/repurpose", func(r chi.Router) {
		r.Use(tools.RequireSecret(auth))
		r.Post("/", handleRun(p))
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
		if req.InterviewID == "" {
			http.Error(w, "interview_id is required", http.StatusBadRequest)
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
