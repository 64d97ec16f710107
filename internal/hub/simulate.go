package hub

import (
	"net/http"
	"strings"
	"time"

	"github.com/adamj-ops/liferx-sub001/internal/contract"
)

const degradedNotice = "hub not configured; responded in degraded local mode"

// simulate synthesizes a contract-compliant stream when no Hub is
// configured: an agent-prefix delta, a word-by-word body, then a final
// event carrying the degraded-mode notice.
func (p *Proxy) simulate(w http.ResponseWriter, req chatRequest) {
	agent := "Ops"
	body := "I received your message but the reasoning Hub is not configured, " +
		"so I can't route it to a specialist agent right now. " +
		"Your message was recorded for this session."

	sw := newStreamWriter(w)
	var transcript strings.Builder

	emit := func(content string) {
		sw.writeEvent(contract.Delta{Type: contract.EventDelta, Content: content})
		sw.writeLine("")
		transcript.WriteString(content)
	}

	emit("[" + agent + "] ")
	words := strings.Split(body, " ")
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		emit(chunk)
		time.Sleep(p.simDelay)
	}

	final := &contract.Final{
		Type:        contract.EventFinal,
		Version:     contract.Version,
		Agent:       agent,
		Content:     body,
		Assumptions: []string{degradedNotice},
		NextActions: []string{"Configure the hub URL to enable agent routing."},
	}
	if violations := contract.CheckFinal(final); len(violations) > 0 {
		final = contract.Fallback(violations)
	}
	sw.writeEvent(final)
	sw.writeLine("")
	sw.writeLine(dataPrefix + "[DONE]")
	sw.writeLine("")

	p.persistAssistantTurn(req.SessionID, transcript.String())
}
