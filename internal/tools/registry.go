package tools

import (
	"context"
	"sort"
)

// Handler executes one named tool. Handlers return a Result even on
// failure; only the gateway converts panics into results.
type Handler func(ctx context.Context, args map[string]any, tc *Context) *Result

// Tool pairs a handler with its declared capability. Writes marks the
// tool write-capable; the gateway rejects writes reported by any other
// tool.
type Tool struct {
	Handler Handler
	Writes  bool
}

// Registry maps tool names to handlers. Registration happens at startup;
// lookups afterwards are read-only, so no locking is needed.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a read-only tool.
func (r *Registry) Register(name string, h Handler) {
	r.tools[name] = Tool{Handler: h}
}

// RegisterWrite adds a write-capable tool.
func (r *Registry) RegisterWrite(name string, h Handler) {
	r.tools[name] = Tool{Handler: h, Writes: true}
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
