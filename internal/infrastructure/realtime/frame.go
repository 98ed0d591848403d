// Package realtime delivers dispatch events to connected WebSocket clients.
//
// Clients subscribe to rooms (truck_<id>, shipper_<id>) after authenticating.
// Events published on any API instance reach every instance through the
// Redis-backed Broker, and each Hub fans them out to its local members.
package realtime

import (
	"encoding/json"
	"errors"
)

// Control events exchanged with clients.
const (
	EventJoin   = "join"
	EventLeave  = "leave"
	EventJoined = "joined"
	EventLeft   = "left"
	EventError  = "error"
)

// Frame is a single message on a client socket, in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Envelope is the message carried between instances on the event bus.
type Envelope struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type roomData struct {
	Room string `json:"room"`
}

type errorData struct {
	Message string `json:"message"`
}

var errMissingRoom = errors.New("room is required")

func encodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// parseRoom accepts either a bare room name or {"room": "..."}.
func parseRoom(raw json.RawMessage) (string, error) {
	var room string
	if err := json.Unmarshal(raw, &room); err != nil {
		var rd roomData
		if err := json.Unmarshal(raw, &rd); err != nil {
			return "", errMissingRoom
		}
		room = rd.Room
	}
	if room == "" {
		return "", errMissingRoom
	}
	return room, nil
}
