package tools

import (
	"fmt"
	"unicode/utf8"

	"github.com/adamj-ops/liferx-sub001/internal/brain"
	"github.com/adamj-ops/liferx-sub001/internal/content"
	"github.com/adamj-ops/liferx-sub001/internal/guests"
	"github.com/adamj-ops/liferx-sub001/internal/interviews"
	"github.com/adamj-ops/liferx-sub001/internal/llm"
	"github.com/adamj-ops/liferx-sub001/internal/outreach"
)

// Deps holds everything the tool handlers need.
type Deps struct {
	Guests     *guests.Store
	Interviews *interviews.Store
	Content    *content.Store
	Renderer   *content.Renderer
	Outreach   *outreach.Store
	Brain      *brain.Store
	BrainIndex *brain.Index
	LLM        llm.Provider
}

// RegisterAll wires every tool handler into the registry.
func RegisterAll(r *Registry, d Deps) {
	registerBrainTools(r, d)
	registerGuestTools(r, d)
	registerInterviewTools(r, d)
	registerContentTools(r, d)
	registerOutreachTools(r, d)
}

// stringArg extracts a string argument; ok is false when absent or the
// wrong type.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok && v != ""
}

func optString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func optBool(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}

// optInt tolerates the float64 that JSON decoding produces for numbers.
func optInt(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func optFloat(args map[string]any, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

// truncateText caps s at roughly n bytes, backing up so a multi-byte
// rune is never split.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func missingArg(key string) *Result {
	return Fail(CodeInvalidArgs, fmt.Sprintf("argument %q is required", key))
}
