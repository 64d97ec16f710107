package hub

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the streaming chat endpoint.
func RegisterRoutes(r chi.Router, p *Proxy) {
	r.Post("/api/chat", p.ServeChat)
}
