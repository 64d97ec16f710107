// Package contract defines the versioned response contract that every
// final Hub payload must satisfy before it reaches a caller, plus the
// event types carried on the chat stream.
package contract

// Version is the contract version this layer expects. Hub responses
// carrying any other version are replaced with a fallback.
const Version = "v1"

// FallbackAgent is the reserved agent identity used on synthesized
// fallback responses. It is never valid on an inbound payload.
const FallbackAgent = "Fallback"

// AgentNames is the fixed set of specialist agents the Hub may answer as.
var AgentNames = []string{"Ops", "Content", "Growth", "Systems"}

// ValidAgent reports whether name is a member of the enumerated agent set.
func ValidAgent(name string) bool {
	for _, n := range AgentNames {
		if n == name {
			return true
		}
	}
	return false
}
