package llm

// Role identifies who authored a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the prompt sent to a provider.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest carries the prompt and sampling parameters for one
// completion. Model overrides the provider default when set.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse is a provider's answer plus usage accounting. The
// token counts feed tool explainability so operators can see what a
// generative step cost.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
}

// TotalTokens returns the combined prompt and completion usage.
func (r *CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}
