/*
Package chat contains the core logic of the chat room.

This file defines the JSON event envelope exchanged over the WebSocket
connection and the payload structures for each event type.
*/
package chat

import "encoding/json"

// EventType identifies an event on the wire.
type EventType string

// Client-to-server events.
const (
	EventSetNickname EventType = "setNickname"
	EventRejoin      EventType = "rejoin"
	EventMessage     EventType = "message"
	EventBanUser     EventType = "banUser"
)

// Server-to-client events.
const (
	EventNicknameAccepted EventType = "nicknameAccepted"
	EventMessageHistory   EventType = "messageHistory"
	EventMessageDeleted   EventType = "messageDeleted"
	EventUserJoined       EventType = "userJoined"
	EventUserLeft         EventType = "userLeft"
	EventOnlineCount      EventType = "onlineCount"
	EventBanned           EventType = "banned"
	EventError            EventType = "error"
)

// Envelope is the wire frame wrapping every event.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RejoinPayload carries the client-held durable identity on reconnect.
type RejoinPayload struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarHue int    `json:"avatarHue"`
}

// NicknameAcceptedPayload confirms a successful claim or rejoin.
type NicknameAcceptedPayload struct {
	User    User `json:"user"`
	IsAdmin bool `json:"isAdmin"`
}

// UserEventPayload announces a membership change together with the
// updated online count.
type UserEventPayload struct {
	Nickname    string `json:"nickname"`
	OnlineCount int    `json:"onlineCount"`
}

// ErrorPayload delivers a typed error to the originating connection only.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MarshalEvent encodes an event envelope with the given payload.
func MarshalEvent(t EventType, payload any) ([]byte, error) {
	env := Envelope{Type: t}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}

	return json.Marshal(env)
}
