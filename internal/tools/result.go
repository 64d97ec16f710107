package tools

// Error codes returned in the result envelope.
const (
	CodeToolNotFound  = "TOOL_NOT_FOUND"
	CodeInvalidOrgID  = "INVALID_ORG_ID"
	CodeInvalidArgs   = "INVALID_ARGS"
	CodeInternalError = "INTERNAL_ERROR"
)

// Error is the failure half of a tool result.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write records one mutation a tool performed.
type Write struct {
	Table string `json:"table"`
	ID    string `json:"id"`
	Op    string `json:"op"`
}

// Result is the uniform envelope every tool returns through the gateway.
// Writes is always present, empty for reads and dry runs.
type Result struct {
	Success        bool           `json:"success"`
	Data           map[string]any `json:"data,omitempty"`
	Error          *Error         `json:"error,omitempty"`
	Explainability map[string]any `json:"explainability,omitempty"`
	Writes         []Write        `json:"writes"`
}

// OK builds a success result.
func OK(data map[string]any, explain map[string]any, writes ...Write) *Result {
	if writes == nil {
		writes = []Write{}
	}
	return &Result{
		Success:        true,
		Data:           data,
		Explainability: explain,
		Writes:         writes,
	}
}

// Fail builds a failure result.
func Fail(code, message string) *Result {
	return &Result{
		Success: false,
		Error:   &Error{Code: code, Message: message},
		Writes:  []Write{},
	}
}

// FailWithExplain builds a failure result that keeps a partially
// computed explainability record for auditability.
func FailWithExplain(code, message string, explain map[string]any) *Result {
	r := Fail(code, message)
	r.Explainability = explain
	return r
}

// DryRun builds the result a write-capable tool returns when writes are
// disallowed: success with a dryRun marker and no writes.
func DryRun(data map[string]any, explain map[string]any) *Result {
	if data == nil {
		data = map[string]any{}
	}
	data["dryRun"] = true
	return OK(data, explain)
}
