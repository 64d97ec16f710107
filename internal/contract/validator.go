package contract

import (
	"strings"
	"sync/atomic"
)

// Invariant names reported on violations. Checked in declaration order;
// the earliest failure decides the logged primary cause.
const (
	InvariantVersion = "version mismatch"
	InvariantAgent   = "unknown agent"
	InvariantContent = "empty content"
)

// violationTotal counts contract violations process-wide. It is a
// monitoring signal only, so a plain atomic counter is enough.
var violationTotal atomic.Int64

// ViolationCount returns the number of contract violations observed since
// process start.
func ViolationCount() int64 { return violationTotal.Load() }

// CheckFinal validates a final payload against the contract. It returns
// the violated invariants in check order; an empty slice means the payload
// is compliant and must be forwarded unchanged.
func CheckFinal(f *Final) []string {
	var violations []string
	if f.Version != Version {
		violations = append(violations, InvariantVersion)
	}
	if !ValidAgent(f.Agent) {
		violations = append(violations, InvariantAgent)
	}
	if f.Content == "" {
		violations = append(violations, InvariantContent)
	}
	return violations
}

// Fallback synthesizes the replacement final event for a violating
// payload. The violated invariants are surfaced as assumptions so the
// degradation stays visible to the caller. The process-wide violation
// counter is incremented here.
func Fallback(violations []string) *Final {
	violationTotal.Add(1)

	content := "I wasn't able to produce a fully validated response for that request. " +
		"The draft answer failed our response checks, so it was withheld.\n\n" +
		"Next actions:\n1. Retry your request.\n2. Rephrase or narrow the request if it happens again."

	return &Final{
		Type:        EventFinal,
		Version:     Version,
		Agent:       FallbackAgent,
		Content:     content,
		Assumptions: violations,
		NextActions: ExtractNextActions(content),
	}
}

// maxNextActions bounds how many action items are surfaced from a body.
const maxNextActions = 5

// ExtractNextActions pulls the numbered or bulleted items following a
// "Next actions" heading out of a response body, capped at 5.
func ExtractNextActions(content string) []string {
	var out []string
	inSection := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !inSection {
			if strings.HasPrefix(strings.ToLower(line), "next actions") {
				inSection = true
			}
			continue
		}
		item := strings.TrimLeft(line, "0123456789.-*) ")
		if item == "" || item == line {
			// Blank line or non-list text ends the section.
			break
		}
		out = append(out, item)
		if len(out) == maxNextActions {
			break
		}
	}
	return out
}
