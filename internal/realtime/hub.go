// Package realtime fans message-store events out to websocket clients
// subscribed to a forum room. Delivery is best-effort and at-most-once: slow
// consumers get dropped frames, reconnecting clients resynchronize by
// refetching the message list.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "realtime_connected_clients",
	Help: "Number of websocket clients currently subscribed to forum rooms",
})

// Bridge publishes room events to other instances of the service. A nil
// bridge means single-instance deployment.
type Bridge interface {
	Publish(ctx context.Context, forum domain.ForumId, payload []byte) error
}

type Hub struct {
	mu     sync.RWMutex
	rooms  map[domain.ForumId]map[*Client]struct{}
	logger *slog.Logger
	bridge Bridge
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[domain.ForumId]map[*Client]struct{}),
		logger: logger,
	}
}

// SetBridge attaches a cross-instance publisher. Must be called before the
// hub starts serving connections.
func (h *Hub) SetBridge(b Bridge) {
	h.bridge = b
}

func (h *Hub) join(forum domain.ForumId, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[forum]; !ok {
		h.rooms[forum] = make(map[*Client]struct{})
	}
	h.rooms[forum][c] = struct{}{}
	connectedClients.Inc()
}

func (h *Hub) leave(forum domain.ForumId, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[forum]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, forum)
	}
	connectedClients.Dec()
}

// Publish fans an event out to the event's forum room only. Callers invoke it
// in store-emission order from the request goroutine, so per-room ordering
// matches the per-client send queues.
func (h *Hub) Publish(ctx context.Context, ev domain.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("could not marshal event", "type", ev.Type, "error", err)
		return
	}

	h.deliver(ev.Forum, payload)

	if h.bridge != nil {
		if err := h.bridge.Publish(ctx, ev.Forum, payload); err != nil {
			h.logger.Warn("bridge publish failed", "forum", ev.Forum, "error", err)
		}
	}
}

// deliver pushes a payload to local room members without blocking: a full
// send queue means the client is too slow and the frame is dropped.
func (h *Hub) deliver(forum domain.ForumId, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[forum] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("dropping frame for slow client", "forum", forum)
		}
	}
}

// RoomSize reports the current number of local subscribers of a forum room.
func (h *Hub) RoomSize(forum domain.ForumId) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[forum])
}
