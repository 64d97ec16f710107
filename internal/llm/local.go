package llm

import (
	"context"
	"strings"
)

// LocalProvider is a deterministic offline provider used when no API key
// is configured. It echoes a condensed form of the prompt so callers that
// template its output still produce stable, testable content.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) Name() string {
	return "local"
}

func (p *LocalProvider) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var prompt string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			prompt = req.Messages[i].Content
			break
		}
	}

	content := condense(prompt, 60)
	if req.JSONMode {
		content = "{}"
	}

	// Word counts stand in for token usage so explainability stays
	// populated offline.
	return &CompletionResponse{
		Content:      content,
		Model:        "local",
		InputTokens:  len(strings.Fields(prompt)),
		OutputTokens: len(strings.Fields(content)),
	}, nil
}

// condense collapses whitespace and truncates to at most n words.
func condense(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
