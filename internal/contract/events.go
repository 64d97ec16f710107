package contract

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates stream event payloads.
type EventType string

const (
	EventDelta      EventType = "delta"
	EventToolStart  EventType = "tool_start"
	EventToolResult EventType = "tool_result"
	EventFinal      EventType = "final"
)

// Event is the sum of all stream event payloads.
type Event interface {
	eventType() EventType
}

// Delta is a chunk of assistant content.
type Delta struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
}

// ToolStart announces a tool invocation on the stream.
type ToolStart struct {
	Type EventType       `json:"type"`
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args,omitempty"`
}

// ToolResult carries a completed tool invocation's envelope fields.
type ToolResult struct {
	Type           EventType       `json:"type"`
	Tool           string          `json:"tool"`
	Data           json.RawMessage `json:"data,omitempty"`
	Explainability json.RawMessage `json:"explainability,omitempty"`
	Writes         json.RawMessage `json:"writes,omitempty"`
}

// Final is the terminal payload of a conversational turn. It is the only
// event subject to contract validation.
type Final struct {
	Type        EventType `json:"type"`
	Version     string    `json:"version"`
	Agent       string    `json:"agent"`
	Content     string    `json:"content"`
	Assumptions []string  `json:"assumptions,omitempty"`
	NextActions []string  `json:"next_actions,omitempty"`
}

func (Delta) eventType() EventType      { return EventDelta }
func (ToolStart) eventType() EventType  { return EventToolStart }
func (ToolResult) eventType() EventType { return EventToolResult }
func (Final) eventType() EventType      { return EventFinal }

// Parse decodes a stream event from its JSON form, dispatching on the
// "type" tag. Unknown types are an error so the caller can decide whether
// to pass the raw bytes through.
func Parse(data []byte) (Event, error) {
	var probe struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}

	switch probe.Type {
	case EventDelta:
		var e Delta
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding delta event: %w", err)
		}
		return e, nil
	case EventToolStart:
		var e ToolStart
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding tool_start event: %w", err)
		}
		return e, nil
	case EventToolResult:
		var e ToolResult
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding tool_result event: %w", err)
		}
		return e, nil
	case EventFinal:
		var e Final
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding final event: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", probe.Type)
	}
}
