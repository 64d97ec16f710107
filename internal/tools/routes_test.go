package tools

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestServer(t *testing.T, auth AuthConfig) *httptest.Server {
	t.Helper()
	f := newFixture(t)
	r := chi.NewRouter()
	RegisterRoutes(r, f.gw, auth)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, secret string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Internal-Secret", secret)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp
}

func TestExecuteRequiresSecret(t *testing.T) {
	srv := newTestServer(t, AuthConfig{InternalSecret: "s3cret"})

	resp := postJSON(t, srv.URL+"/api/tools/execute", "", map[string]any{"toolName": "brain.search"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without secret, got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/tools/execute", "wrong", map[string]any{"toolName": "brain.search"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong secret, got %d", resp.StatusCode)
	}
}

// With no secret configured, only development mode may dispatch.
func TestNoSecretOnlyInDevMode(t *testing.T) {
	prod := newTestServer(t, AuthConfig{DevMode: false})
	resp := postJSON(t, prod.URL+"/api/tools/execute", "", map[string]any{"toolName": "x"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 in production without secret, got %d", resp.StatusCode)
	}

	dev := newTestServer(t, AuthConfig{DevMode: true})
	resp = postJSON(t, dev.URL+"/api/tools/execute", "", map[string]any{"toolName": "x"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 in dev mode, got %d", resp.StatusCode)
	}
}

func TestExecuteMalformedBody(t *testing.T) {
	srv := newTestServer(t, AuthConfig{DevMode: true})

	resp, err := http.Post(srv.URL+"/api/tools/execute", "application/json",
		strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Success || result.Error.Code != CodeInvalidArgs {
		t.Errorf("expected INVALID_ARGS envelope, got %+v", result)
	}
}

func TestExecuteDispatchesTool(t *testing.T) {
	srv := newTestServer(t, AuthConfig{InternalSecret: "s3cret"})

	resp := postJSON(t, srv.URL+"/api/tools/execute", "s3cret", map[string]any{
		"toolName": "guests.upsert_guest",
		"args":     map[string]any{"name": "Route Guest"},
		"context":  map[string]any{"org_id": testOrg, "allowWrites": true},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success {
		t.Fatalf("dispatch failed: %+v", result.Error)
	}
	if len(result.Writes) != 1 || result.Writes[0].Table != "guests" {
		t.Errorf("unexpected writes: %v", result.Writes)
	}
}

func TestListToolsGated(t *testing.T) {
	srv := newTestServer(t, AuthConfig{InternalSecret: "s3cret"})

	resp, err := http.Get(srv.URL + "/api/tools")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous listing, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/tools", nil)
	req.Header.Set("X-Internal-Secret", "s3cret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status string   `json:"status"`
		Tools  []string `json:"tools"`
		Count  int      `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %q", body.Status)
	}
	if len(body.Tools) != 17 || body.Count != 17 {
		t.Errorf("expected 17 registered tools, got %d: %v", body.Count, body.Tools)
	}
}
