// Package live pushes session views and library changes to websocket clients.
package live

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"mangashelf/internal/logging"
	"mangashelf/internal/metrics"
)

const writeWait = 2 * time.Second

// Hub fans events out to the websocket clients subscribed to a topic.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*websocket.Conn]struct{}
}

type Stats struct {
	Topics    int `json:"topics"`
	WSClients int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(topic string, ws *websocket.Conn) {
	h.mu.Lock()
	conns, ok := h.topics[topic]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		h.topics[topic] = conns
	}
	conns[ws] = struct{}{}
	h.mu.Unlock()
	metrics.TrackLiveClient(true)
}

func (h *Hub) Remove(topic string, ws *websocket.Conn) {
	h.mu.Lock()
	removed := h.removeLocked(topic, ws)
	h.mu.Unlock()
	if removed {
		metrics.TrackLiveClient(false)
	}
	_ = ws.Close()
}

func (h *Hub) removeLocked(topic string, ws *websocket.Conn) bool {
	conns, ok := h.topics[topic]
	if !ok {
		return false
	}
	if _, ok := conns[ws]; !ok {
		return false
	}
	delete(conns, ws)
	if len(conns) == 0 {
		delete(h.topics, topic)
	}
	return true
}

// Publish writes ev to every client on topic. Clients that fail the write
// are dropped.
func (h *Hub) Publish(topic string, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		logging.Component("live").Error().Err(err).Str("topic", topic).Msg("marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.topics[topic] {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			if h.removeLocked(topic, ws) {
				metrics.TrackLiveClient(false)
			}
			_ = ws.Close()
		}
	}
}

// CloseTopic sends a final event and disconnects everyone on topic.
func (h *Hub) CloseTopic(topic string, ev Event) {
	h.Publish(topic, ev)

	h.mu.Lock()
	conns := h.topics[topic]
	delete(h.topics, topic)
	h.mu.Unlock()

	for ws := range conns {
		metrics.TrackLiveClient(false)
		_ = ws.Close()
	}
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := Stats{Topics: len(h.topics)}
	for _, conns := range h.topics {
		st.WSClients += len(conns)
	}
	return st
}
