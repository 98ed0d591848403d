package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/haulmatch/dispatch-api/internal/api/metrics"
	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// Hub tracks room membership for the clients connected to this instance.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

// Serve runs a connected socket until it closes. p is the identity the
// connection authenticated with; it decides which rooms may be joined.
func (h *Hub) Serve(conn *websocket.Conn, p domain.Principal) {
	c := newClient(h, conn, p)
	metrics.RealtimeConnections.Inc()
	h.log.Debug().Str("sub", p.Subject).Str("role", p.Role).Msg("realtime client connected")

	go c.writePump()
	c.readPump()
}

// Join adds c to room if its principal is allowed there.
func (h *Hub) Join(c *Client, room string) error {
	p := c.principal
	if !domain.CanJoinRoom(p.Role, p.Subject, p.TruckID, room) {
		metrics.RealtimeJoinsTotal.WithLabelValues("denied").Inc()
		h.log.Warn().Str("sub", p.Subject).Str("role", p.Role).Str("room", room).Msg("room join denied")
		return domain.ErrForbidden
	}

	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
	h.mu.Unlock()

	metrics.RealtimeJoinsTotal.WithLabelValues("granted").Inc()
	return nil
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, room)
}

// Broadcast sends an event to every local member of room and returns how
// many clients it was queued for. Slow clients whose buffer is full miss it.
func (h *Hub) Broadcast(room, event string, data json.RawMessage) int {
	msg, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode frame")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.rooms[room] {
		if c.enqueue(msg) {
			delivered++
			continue
		}
		h.log.Warn().Str("room", room).Str("sub", c.principal.Subject).Msg("client send buffer full, event dropped")
	}
	if delivered > 0 {
		metrics.RealtimeEventsTotal.WithLabelValues(event).Inc()
	}
	return delivered
}

// RoomSize reports the number of local members of room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// unregister drops c from every room and closes its send channel. It is
// only called from c's read loop, after which nothing else enqueues for c.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	for room := range c.rooms {
		h.removeLocked(c, room)
	}
	h.mu.Unlock()

	close(c.send)
	metrics.RealtimeConnections.Dec()
	h.log.Debug().Str("sub", c.principal.Subject).Msg("realtime client disconnected")
}

func (h *Hub) removeLocked(c *Client, room string) {
	delete(c.rooms, room)
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}
