// Package events fans operational events out to connected operator
// dashboards over WebSocket: tool dispatches, pipeline runs, contract
// violations.
package events

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is the outgoing WebSocket message format.
type Event struct {
	Type string         `json:"type"`
	At   time.Time      `json:"at"`
	Data map[string]any `json:"data,omitempty"`
}

// writeWait bounds how long a single client write may block. A client
// that cannot keep up is dropped rather than stalling publishers.
const writeWait = 5 * time.Second

// Broadcaster tracks connected clients and pushes events to all of
// them. Clients that fail or time out a write are dropped.
type Broadcaster struct {
	mu        sync.Mutex
	conns     map[*websocket.Conn]struct{}
	writeWait time.Duration
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{conns: map[*websocket.Conn]struct{}{}, writeWait: writeWait}
}

// Handler upgrades the request and holds the connection open until the
// client goes away. Inbound messages are discarded; the socket is
// publish-only.
func (b *Broadcaster) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	b.add(conn)
	defer b.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket read")
			}
			return
		}
	}
}

// Publish sends one event to every connected client.
func (b *Broadcaster) Publish(eventType string, data map[string]any) {
	ev := Event{Type: eventType, At: time.Now().UTC(), Data: data}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		conn.SetWriteDeadline(time.Now().Add(b.writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			log.Debug().Err(err).Msg("dropping event client")
			conn.Close()
			delete(b.conns, conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}

// ToolDispatched publishes a tool dispatch outcome. Satisfies the tool
// gateway's observer hook.
func (b *Broadcaster) ToolDispatched(tool string, success bool, duration time.Duration) {
	b.Publish("tool.dispatch", map[string]any{
		"tool":        tool,
		"success":     success,
		"duration_ms": duration.Milliseconds(),
	})
}

// PipelineFinished publishes a pipeline completion. Satisfies the
// pipeline runner's observer hook.
func (b *Broadcaster) PipelineFinished(name string, success bool, succeeded, failed int) {
	b.Publish("pipeline.run", map[string]any{
		"pipeline":  name,
		"success":   success,
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// ContractViolation publishes a contract violation observed on the chat
// stream.
func (b *Broadcaster) ContractViolation(sessionID string, violations []string) {
	b.Publish("contract.violation", map[string]any{
		"session_id": sessionID,
		"violations": violations,
	})
}

func (b *Broadcaster) add(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[conn] = struct{}{}
}

func (b *Broadcaster) remove(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conn.Close()
	delete(b.conns, conn)
}
