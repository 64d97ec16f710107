package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

func waitForClients(t *testing.T, b *Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, b.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishReachesAllClients(t *testing.T) {
	b := NewBroadcaster()
	server := httptest.NewServer(http.HandlerFunc(b.Handler))
	defer server.Close()

	c1 := dial(t, server)
	c2 := dial(t, server)
	waitForClients(t, b, 2)

	b.Publish("pipeline.run", map[string]any{"pipeline": "repurpose", "success": true})

	for _, conn := range []*websocket.Conn{c1, c2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("reading event: %v", err)
		}
		if ev.Type != "pipeline.run" {
			t.Errorf("expected pipeline.run, got %q", ev.Type)
		}
		if ev.Data["pipeline"] != "repurpose" {
			t.Errorf("unexpected data: %v", ev.Data)
		}
		if ev.At.IsZero() {
			t.Error("expected timestamp")
		}
	}
}

func TestDisconnectedClientIsDropped(t *testing.T) {
	b := NewBroadcaster()
	server := httptest.NewServer(http.HandlerFunc(b.Handler))
	defer server.Close()

	conn := dial(t, server)
	waitForClients(t, b, 1)

	conn.Close()
	// The read loop notices the close; publishing afterwards must not
	// hang or grow the client set.
	waitForClients(t, b, 0)
	b.Publish("tool.dispatch", nil)
	if b.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", b.ClientCount())
	}
}

// A client that stops reading must not stall Publish indefinitely; once
// its write times out it gets dropped.
func TestStalledClientIsDropped(t *testing.T) {
	b := NewBroadcaster()
	b.writeWait = 50 * time.Millisecond
	server := httptest.NewServer(http.HandlerFunc(b.Handler))
	defer server.Close()

	dial(t, server) // connected but never reads
	waitForClients(t, b, 1)

	filler := strings.Repeat("x", 1<<16)
	deadline := time.Now().Add(10 * time.Second)
	for b.ClientCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("stalled client was never dropped")
		}
		b.Publish("noise", map[string]any{"fill": filler})
	}
}

func TestToolDispatchedPublishes(t *testing.T) {
	b := NewBroadcaster()
	server := httptest.NewServer(http.HandlerFunc(b.Handler))
	defer server.Close()

	conn := dial(t, server)
	waitForClients(t, b, 1)

	b.ToolDispatched("guests.upsert_guest", true, 12*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	if ev.Type != "tool.dispatch" {
		t.Errorf("expected tool.dispatch, got %q", ev.Type)
	}
	if ev.Data["tool"] != "guests.upsert_guest" || ev.Data["success"] != true {
		t.Errorf("unexpected data: %v", ev.Data)
	}
}
