package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// New returns an OpenAI-backed provider when an API key is configured,
// otherwise the deterministic local provider so generative tools keep
// working offline.
func New(apiKey, model string) Provider {
	if apiKey == "" {
		return NewLocalProvider()
	}
	return NewOpenAIProvider(apiKey, model)
}
