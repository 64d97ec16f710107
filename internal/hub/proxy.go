// Package hub relays chat requests to the reasoning Hub, intercepting
// the event stream line by line and enforcing the response contract on
// final events before they reach the caller.
package hub

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/adamj-ops/liferx-sub001/internal/contract"
	"github.com/adamj-ops/liferx-sub001/internal/sessions"
)

const dataPrefix = "data: "

// Proxy streams conversations between callers and the Hub. With no Hub
// configured it synthesizes a local degraded-mode stream so the contract
// boundary stays exercisable.
type Proxy struct {
	hubURL         string
	internalSecret string
	defaultOrgID   string
	sessions       *sessions.Store
	client         *http.Client

	// simDelay is the inter-word delay of the simulated stream.
	// Shortened in tests.
	simDelay time.Duration

	// notify, when set, reports contract violations to the operator
	// event feed. Must not block.
	notify func(sessionID string, violations []string)
}

// SetViolationNotifier attaches a violation callback. Call before
// serving traffic.
func (p *Proxy) SetViolationNotifier(fn func(sessionID string, violations []string)) {
	p.notify = fn
}

func NewProxy(hubURL, internalSecret, defaultOrgID string, store *sessions.Store) *Proxy {
	return &Proxy{
		hubURL:         hubURL,
		internalSecret: internalSecret,
		defaultOrgID:   defaultOrgID,
		sessions:       store,
		client:         &http.Client{},
		simDelay:       20 * time.Millisecond,
	}
}

type chatUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	SessionID string        `json:"session_id"`
	Messages  []chatMessage `json:"messages"`
	OrgID     string        `json:"org_id"`
	User      chatUser      `json:"user"`
}

// ServeChat handles one streaming conversation turn.
func (p *Proxy) ServeChat(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "messages required", http.StatusBadRequest)
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	if req.OrgID == "" {
		req.OrgID = p.defaultOrgID
	}

	p.persistUserTurn(r.Context(), req)

	if p.hubURL == "" {
		p.simulate(w, req)
		return
	}
	p.forward(w, r, req)
}

// authorized accepts a bearer credential or the explicit operator-mode
// flag. End-user identity is handled upstream; this gate only keeps the
// endpoint from being anonymous.
func authorized(r *http.Request) bool {
	if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		return true
	}
	return r.Header.Get("X-Operator-Mode") == "true"
}

// persistUserTurn upserts the session and appends the trailing user
// message. Best-effort: failures are logged and the stream proceeds.
func (p *Proxy) persistUserTurn(ctx context.Context, req chatRequest) {
	err := p.sessions.Upsert(ctx, sessions.Session{
		ID:     req.SessionID,
		UserID: req.User.ID,
		OrgID:  req.OrgID,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("session upsert failed")
		return
	}

	last := req.Messages[len(req.Messages)-1]
	_, err = p.sessions.AddMessage(ctx, sessions.Message{
		SessionID: req.SessionID,
		Role:      "user",
		Content:   last.Content,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("user turn persist failed")
	}
}

// persistAssistantTurn stores the assembled transcript after the stream
// drains. Uses a fresh context: the caller may already be gone.
func (p *Proxy) persistAssistantTurn(sessionID, transcript string) {
	if transcript == "" {
		return
	}
	_, err := p.sessions.AddMessage(context.Background(), sessions.Message{
		SessionID: sessionID,
		Role:      "assistant",
		Content:   transcript,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("assistant turn persist failed")
	}
}

// forward relays the upstream Hub stream, validating final events.
func (p *Proxy) forward(w http.ResponseWriter, r *http.Request, req chatRequest) {
	payload, err := json.Marshal(map[string]any{
		"session_id": req.SessionID,
		"messages":   req.Messages,
		"org_id":     req.OrgID,
		"user":       req.User,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	upReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost,
		strings.TrimRight(p.hubURL, "/")+"/run", bytes.NewReader(payload))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	upReq.Header.Set("Content-Type", "application/json")
	upReq.Header.Set("Accept", "text/event-stream")
	upReq.Header.Set("X-Internal-Secret", p.internalSecret)

	resp, err := p.client.Do(upReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("hub unreachable: %v", err), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Surface the upstream failure verbatim.
		body, _ := io.ReadAll(resp.Body)
		w.WriteHeader(resp.StatusCode)
		w.Write(body)
		return
	}
	if resp.Body == nil {
		http.Error(w, "hub returned no body", http.StatusBadGateway)
		return
	}

	sw := newStreamWriter(w)
	transcript := p.relay(resp.Body, sw, req.SessionID)
	p.persistAssistantTurn(req.SessionID, transcript)
}

// relay copies the upstream stream line by line, accumulating delta
// content and substituting fallbacks for finals that violate the
// contract. Every upstream byte results in some emitted line; parse
// failures pass through raw.
func (p *Proxy) relay(upstream io.Reader, sw *streamWriter, sessionID string) string {
	var transcript strings.Builder
	reader := bufio.NewReader(upstream)

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			p.relayLine(strings.TrimRight(line, "\r\n"), sw, sessionID, &transcript)
		}
		if err != nil {
			if err != io.EOF {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("hub stream read error")
			}
			break
		}
	}
	return transcript.String()
}

func (p *Proxy) relayLine(line string, sw *streamWriter, sessionID string, transcript *strings.Builder) {
	if !strings.HasPrefix(line, dataPrefix) {
		sw.writeLine(line)
		return
	}
	payload := line[len(dataPrefix):]
	if payload == "[DONE]" {
		sw.writeLine(line)
		return
	}

	ev, err := contract.Parse([]byte(payload))
	if err != nil {
		// Never silently swallow bytes the upstream sent.
		sw.writeLine(line)
		return
	}

	switch e := ev.(type) {
	case contract.Delta:
		transcript.WriteString(e.Content)
		sw.writeLine(line)
	case contract.Final:
		violations := contract.CheckFinal(&e)
		if len(violations) == 0 {
			sw.writeLine(line)
			return
		}
		log.Warn().
			Str("session_id", sessionID).
			Strs("violations", violations).
			Msg("contract violation, substituting fallback")
		if p.notify != nil {
			p.notify(sessionID, violations)
		}
		sw.writeEvent(contract.Fallback(violations))
	default:
		sw.writeLine(line)
	}
}

// streamWriter writes SSE lines, flushing per line and going quiet once
// the client disconnects so the upstream can still be drained.
type streamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
	broken  bool
}

func newStreamWriter(w http.ResponseWriter) *streamWriter {
	flusher, _ := w.(http.Flusher)
	return &streamWriter{w: w, flusher: flusher}
}

func (sw *streamWriter) start() {
	if sw.started {
		return
	}
	sw.started = true
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	sw.w.WriteHeader(http.StatusOK)
}

func (sw *streamWriter) writeLine(line string) {
	sw.start()
	if sw.broken {
		return
	}
	if _, err := fmt.Fprintf(sw.w, "%s\n", line); err != nil {
		sw.broken = true
		return
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
}

func (sw *streamWriter) writeEvent(ev any) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("marshalling stream event")
		return
	}
	sw.writeLine(dataPrefix + string(b))
}
