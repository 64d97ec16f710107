package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adamj-ops/liferx-sub001/internal/contract"
	"github.com/adamj-ops/liferx-sub001/internal/db"
	"github.com/adamj-ops/liferx-sub001/internal/sessions"
)

const testOrg = "11111111-1111-1111-1111-111111111111"

func newTestProxy(t *testing.T, hubURL string) (*Proxy, *sessions.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := sessions.NewStore(database)
	p := NewProxy(hubURL, "s3cret", testOrg, store)
	p.simDelay = time.Millisecond
	return p, store
}

func newChatServer(t *testing.T, p *Proxy) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, p)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func chat(t *testing.T, url string, body map[string]any, headers map[string]string) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url+"/api/chat", strings.NewReader(string(buf)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp
}

func operatorHeaders() map[string]string {
	return map[string]string{"X-Operator-Mode": "true"}
}

func validBody() map[string]any {
	return map[string]any{
		"session_id": "sess-1",
		"messages":   []map[string]string{{"role": "user", "content": "hello there"}},
	}
}

// dataLines returns the payload of every data: line in the stream.
func dataLines(t *testing.T, resp *http.Response) []string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(line, dataPrefix) {
			out = append(out, line[len(dataPrefix):])
		}
	}
	return out
}

func TestChatRequiresAuth(t *testing.T) {
	p, _ := newTestProxy(t, "")
	srv := newChatServer(t, p)

	resp := chat(t, srv.URL, validBody(), nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", resp.StatusCode)
	}

	resp = chat(t, srv.URL, validBody(), map[string]string{"Authorization": "Bearer tok"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with bearer, got %d", resp.StatusCode)
	}
}

func TestChatRequiresMessages(t *testing.T) {
	p, _ := newTestProxy(t, "")
	srv := newChatServer(t, p)

	resp := chat(t, srv.URL, map[string]any{"session_id": "s"}, operatorHeaders())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without messages, got %d", resp.StatusCode)
	}
}

// With no Hub configured the caller gets simulated deltas, a final with
// the degraded-mode assumption, then the terminator.
func TestSimulatedStream(t *testing.T) {
	p, store := newTestProxy(t, "")
	srv := newChatServer(t, p)

	resp := chat(t, srv.URL, validBody(), operatorHeaders())
	defer resp.Body.Close()
	lines := dataLines(t, resp)
	if len(lines) < 3 {
		t.Fatalf("expected deltas, final and terminator, got %v", lines)
	}
	if lines[len(lines)-1] != "[DONE]" {
		t.Errorf("expected [DONE] terminator, got %q", lines[len(lines)-1])
	}

	var sawPrefix bool
	var final *contract.Final
	for _, payload := range lines[:len(lines)-1] {
		ev, err := contract.Parse([]byte(payload))
		if err != nil {
			t.Fatalf("unparseable event %q: %v", payload, err)
		}
		switch e := ev.(type) {
		case contract.Delta:
			if strings.HasPrefix(e.Content, "[Ops] ") {
				sawPrefix = true
			}
		case contract.Final:
			final = &e
		}
	}
	if !sawPrefix {
		t.Error("expected agent-prefix delta")
	}
	if final == nil {
		t.Fatal("expected final event")
	}
	if len(contract.CheckFinal(final)) != 0 {
		t.Errorf("simulated final violates contract: %+v", final)
	}
	if len(final.Assumptions) == 0 || !strings.Contains(final.Assumptions[0], "degraded") {
		t.Errorf("expected degraded-mode assumption, got %v", final.Assumptions)
	}

	// Both turns persisted.
	msgs, err := store.GetMessages(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("expected user+assistant turns, got %+v", msgs)
	}
	if !strings.HasPrefix(msgs[1].Content, "[Ops] ") {
		t.Errorf("transcript should start with agent prefix: %q", msgs[1].Content)
	}
}

func upstreamHub(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// A compliant final passes through byte-identical.
func TestForwardValidFinalUntouched(t *testing.T) {
	finalLine := `data: {"type":"final","version":"v1","agent":"Content","content":"All set.","next_actions":["review the draft"]}`
	up := upstreamHub(t,
		`data: {"type":"delta","content":"All "}`,
		`data: {"type":"delta","content":"set."}`,
		finalLine,
		`data: [DONE]`,
	)
	p, store := newTestProxy(t, up.URL)
	srv := newChatServer(t, p)

	resp := chat(t, srv.URL, validBody(), operatorHeaders())
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), finalLine) {
		t.Errorf("final not forwarded byte-identical:\n%s", body)
	}

	msgs, err := store.GetMessages(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[1].Content != "All set." {
		t.Errorf("expected accumulated transcript persisted, got %+v", msgs)
	}
}

// A version-mismatch final is replaced with the fallback event and the
// violation counter moves.
func TestForwardSubstitutesFallback(t *testing.T) {
	up := upstreamHub(t,
		`data: {"type":"delta","content":"draft"}`,
		`data: {"type":"final","version":"v0","agent":"Content","content":"stale"}`,
		`data: [DONE]`,
	)
	p, _ := newTestProxy(t, up.URL)
	srv := newChatServer(t, p)

	before := contract.ViolationCount()
	resp := chat(t, srv.URL, validBody(), operatorHeaders())
	defer resp.Body.Close()
	lines := dataLines(t, resp)

	var final *contract.Final
	for _, payload := range lines {
		if payload == "[DONE]" {
			continue
		}
		if ev, err := contract.Parse([]byte(payload)); err == nil {
			if f, ok := ev.(contract.Final); ok {
				final = &f
			}
		}
	}
	if final == nil {
		t.Fatal("expected a final event")
	}
	if final.Agent != contract.FallbackAgent || final.Version != contract.Version {
		t.Errorf("expected fallback final, got %+v", final)
	}
	if len(final.Assumptions) == 0 || final.Assumptions[0] != contract.InvariantVersion {
		t.Errorf("expected version violation in assumptions, got %v", final.Assumptions)
	}
	if contract.ViolationCount() != before+1 {
		t.Errorf("violation counter did not increment")
	}
}

// Unparseable event lines pass through raw rather than being dropped.
func TestForwardPassesThroughGarbage(t *testing.T) {
	up := upstreamHub(t,
		`data: {not json at all`,
		`data: {"type":"final","version":"v1","agent":"Ops","content":"ok"}`,
		`data: [DONE]`,
	)
	p, _ := newTestProxy(t, up.URL)
	srv := newChatServer(t, p)

	resp := chat(t, srv.URL, validBody(), operatorHeaders())
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "data: {not json at all") {
		t.Errorf("garbage line was swallowed:\n%s", body)
	}
}

// Upstream non-2xx statuses surface verbatim.
func TestForwardRelaysUpstreamError(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, "hub says no")
	}))
	t.Cleanup(up.Close)

	p, _ := newTestProxy(t, up.URL)
	srv := newChatServer(t, p)

	resp := chat(t, srv.URL, validBody(), operatorHeaders())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("expected 418 relayed, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "hub says no" {
		t.Errorf("expected upstream body verbatim, got %q", body)
	}
}

func TestForwardTransportFailure(t *testing.T) {
	p, store := newTestProxy(t, "http://127.0.0.1:1")
	srv := newChatServer(t, p)

	resp := chat(t, srv.URL, validBody(), operatorHeaders())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}

	// User turn persistence was still attempted.
	msgs, err := store.GetMessages(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != "user" {
		t.Errorf("expected only the user turn, got %+v", msgs)
	}
}

// Re-sending a session id upserts rather than duplicating.
func TestSessionUpsertIdempotent(t *testing.T) {
	p, store := newTestProxy(t, "")
	srv := newChatServer(t, p)

	for i := 0; i < 2; i++ {
		resp := chat(t, srv.URL, validBody(), operatorHeaders())
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	n, err := store.CountSessions(context.Background())
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 session row, got %d", n)
	}
}
