// Package observer streams committed events and snapshots to external
// watchers. Observers are read-only: nothing they do can influence a run.
package observer

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"monopoly/protocol"
)

const writeWait = 10 * time.Second

// Frame is the wire envelope after the handshake: exactly one of Event or
// Snapshot is set.
type Frame struct {
	Kind     string             `json:"kind"`
	Event    *protocol.Event    `json:"event,omitempty"`
	Snapshot *protocol.Snapshot `json:"snapshot,omitempty"`
}

// Hub fans events and snapshots out to websocket spectators. A slow or dead
// spectator is dropped, never waited on.
type Hub struct {
	runID    string
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	subs     map[uint64]*subscriber
	nextID   uint64
	lastSnap *protocol.Snapshot
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// NewHub creates a hub for one run.
func NewHub(runID string) *Hub {
	return &Hub{
		runID:  runID,
		logger: log.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		subs: make(map[uint64]*subscriber),
	}
}

// ServeHTTP upgrades a spectator connection. The first frame is the
// handshake, then the latest snapshot if the run is already underway, then
// the live stream.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Msgf("observer upgrade failed: %v", err)
		return
	}
	sub := &subscriber{conn: conn}

	hello, err := json.Marshal(protocol.Handshake{
		SchemaVersion: protocol.SchemaVersion,
		RunID:         h.runID,
		Kind:          "spectator",
	})
	if err != nil {
		conn.Close()
		return
	}
	if err := sub.write(hello); err != nil {
		conn.Close()
		return
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	resync := h.lastSnap
	h.mu.Unlock()

	if resync != nil {
		if data, err := json.Marshal(Frame{Kind: "snapshot", Snapshot: resync}); err == nil {
			if err := sub.write(data); err != nil {
				h.drop(id)
				return
			}
		}
	}

	// Spectators send nothing; the read loop only notices the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(id)
			return
		}
	}
}

// BroadcastEvent implements the engine broadcaster contract.
func (h *Hub) BroadcastEvent(ev protocol.Event) {
	data, err := json.Marshal(Frame{Kind: "event", Event: &ev})
	if err != nil {
		return
	}
	h.writeAll(data)
}

// BroadcastSnapshot keeps the latest snapshot for resync and pushes it to
// every spectator.
func (h *Hub) BroadcastSnapshot(snap protocol.Snapshot) {
	h.mu.Lock()
	h.lastSnap = &snap
	h.mu.Unlock()

	data, err := json.Marshal(Frame{Kind: "snapshot", Snapshot: &snap})
	if err != nil {
		return
	}
	h.writeAll(data)
}

func (h *Hub) writeAll(data []byte) {
	h.mu.Lock()
	subs := make(map[uint64]*subscriber, len(h.subs))
	for id, sub := range h.subs {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		if err := sub.write(data); err != nil {
			h.logger.Warn().Msgf("observer %d dropped: %v", id, err)
			h.drop(id)
		}
	}
}

func (h *Hub) drop(id uint64) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// Close sends a normal closure to every spectator and disconnects them.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[uint64]*subscriber)
	h.mu.Unlock()

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run complete")
	for _, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		sub.conn.WriteMessage(websocket.CloseMessage, message)
		sub.mu.Unlock()
		sub.conn.Close()
	}
}
