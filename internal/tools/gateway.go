package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Observer is notified after every dispatch. Implementations must not
// block; notification happens on the request path.
type Observer interface {
	ToolDispatched(tool string, success bool, duration time.Duration)
}

// Gateway resolves context, looks up the named tool and invokes it,
// normalizing every outcome into the Result envelope.
type Gateway struct {
	registry     *Registry
	defaultOrgID string
	observer     Observer
}

func NewGateway(registry *Registry, defaultOrgID string) *Gateway {
	return &Gateway{registry: registry, defaultOrgID: defaultOrgID}
}

// Registry exposes the underlying registry for listing.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// SetObserver attaches a dispatch observer. Call before serving traffic.
func (g *Gateway) SetObserver(o Observer) {
	g.observer = o
}

// Dispatch runs one tool call. It never returns nil and never panics:
// handler panics are caught and normalized to INTERNAL_ERROR.
func (g *Gateway) Dispatch(ctx context.Context, toolName string, args map[string]any, raw RawContext) (result *Result) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("tool", toolName).
				Interface("panic", rec).
				Msg("tool handler panicked")
			result = Fail(CodeInternalError, fmt.Sprintf("%v", rec))
		}
		log.Debug().
			Str("tool", toolName).
			Bool("success", result.Success).
			Dur("duration", time.Since(start)).
			Msg("tool dispatched")
		if g.observer != nil {
			g.observer.ToolDispatched(toolName, result.Success, time.Since(start))
		}
	}()

	if toolName == "" {
		return Fail(CodeToolNotFound, "tool name is required")
	}
	tool, ok := g.registry.Get(toolName)
	if !ok {
		return Fail(CodeToolNotFound, fmt.Sprintf("unknown tool %q", toolName))
	}

	tc, err := ResolveContext(raw, g.defaultOrgID)
	if err != nil {
		return Fail(CodeInvalidOrgID, err.Error())
	}

	if args == nil {
		args = map[string]any{}
	}
	result = tool.Handler(ctx, args, tc)
	if result == nil {
		result = Fail(CodeInternalError, "handler returned no result")
	}
	if len(result.Writes) > 0 && (!tool.Writes || !tc.AllowWrites) {
		log.Error().
			Str("tool", toolName).
			Bool("declared_writes", tool.Writes).
			Bool("allow_writes", tc.AllowWrites).
			Msg("tool reported writes outside its declared capability")
		result = FailWithExplain(CodeInternalError,
			"tool reported writes it was not permitted to make", result.Explainability)
	}
	return result
}
