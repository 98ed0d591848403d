package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one WebSocket connection bound to an authenticated principal.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	principal domain.Principal
	// rooms is guarded by hub.mu.
	rooms map[string]struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, p domain.Principal) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		principal: p,
		rooms:     make(map[string]struct{}),
	}
}

func (c *Client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) reply(event string, data any) {
	msg, err := encodeFrame(event, data)
	if err != nil {
		c.hub.log.Error().Err(err).Str("event", event).Msg("encode reply")
		return
	}
	c.enqueue(msg)
}

// handle processes one inbound frame.
func (c *Client) handle(raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		c.reply(EventError, errorData{Message: "malformed frame"})
		return
	}

	switch f.Event {
	case EventJoin:
		room, err := parseRoom(f.Data)
		if err != nil {
			c.reply(EventError, errorData{Message: err.Error()})
			return
		}
		if err := c.hub.Join(c, room); err != nil {
			c.reply(EventError, errorData{Message: "not allowed to join " + room})
			return
		}
		c.reply(EventJoined, roomData{Room: room})
	case EventLeave:
		room, err := parseRoom(f.Data)
		if err != nil {
			c.reply(EventError, errorData{Message: err.Error()})
			return
		}
		c.hub.Leave(c, room)
		c.reply(EventLeft, roomData{Room: room})
	default:
		c.reply(EventError, errorData{Message: "unknown event " + f.Event})
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Str("sub", c.principal.Subject).Msg("realtime read failed")
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
