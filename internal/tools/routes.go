package tools

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type dispatchRequest struct {
	ToolName string         `json:"toolName"`
	Args     map[string]any `json:"args"`
	Context  RawContext     `json:"context"`
}

// AuthConfig is the shared-secret gate for the tool endpoints. With no
// secret configured, requests are allowed only in development mode.
type AuthConfig struct {
	InternalSecret string
	DevMode        bool
}

// RegisterRoutes mounts the tool endpoints under /api/tools.
func RegisterRoutes(r chi.Router, gw *Gateway, auth AuthConfig) {
	r.Route("/api/tools", func(r chi.Router) {
		r.Use(RequireSecret(auth))
		r.Get("/", handleList(gw))
		r.Post("/execute", handleExecute(gw))
	})
}

// RequireSecret gates a route subtree behind the internal shared secret.
// Pipeline endpoints reuse it so internal surfaces share one gate.
func RequireSecret(auth AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.InternalSecret == "" {
				if !auth.DevMode {
					http.Error(w, "internal secret not configured", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get("X-Internal-Secret") != auth.InternalSecret {
				http.Error(w, "invalid internal secret", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleExecute(gw *Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail(CodeInvalidArgs, "invalid request body: "+err.Error()))
			return
		}

		result := gw.Dispatch(r.Context(), req.ToolName, req.Args, req.Context)
		writeJSON(w, http.StatusOK, result)
	}
}

func handleList(gw *Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := gw.Registry().Names()
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"tools":  names,
			"count":  len(names),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
