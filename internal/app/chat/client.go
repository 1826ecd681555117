/*
Package chat contains the core logic of the chat room.

This file defines the Client struct, representing an active WebSocket
connection. It manages the read and write pumps, inbound event dispatch,
and delivery of events through a buffered send queue.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"emberchat/internal/pkg/errs"
	"emberchat/internal/pkg/logx"
	"emberchat/internal/pkg/randx"
)

const (
	// timeout for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame. Messages are at
	// most 100 characters; this leaves ample room for the envelope.
	maxFrameSize = 4096

	// sendQueueSize is the per-client outbound buffer.
	sendQueueSize = 256
)

// wsConn is the subset of *websocket.Conn the client uses. Narrowed to an
// interface so tests can drive a client without a network connection.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Client represents one active WebSocket connection.
type Client struct {
	room   *Room
	conn   wsConn
	connID string
	ip     string

	send     chan []byte
	sendOnce sync.Once

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection. The connection
// id is ephemeral and never leaves the server.
func NewClient(room *Room, conn wsConn, ip string) *Client {
	connID := randx.UserID()

	return &Client{
		room:   room,
		conn:   conn,
		connID: connID,
		ip:     ip,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().Str("conn_id", connID).Logger(),
	}
}

// ReadPump reads events from the connection until it closes, dispatching
// each to the room. It handles the Pong heartbeat and performs disconnect
// cleanup on exit.
func (c *Client) ReadPump() {
	defer func() {
		c.room.HandleDisconnect(c)
		c.closeSend()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close on read pump exit.")
		}
	}()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline.")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected connection close.")
			}
			break
		}

		c.dispatch(frame)
	}
}

// dispatch parses an inbound envelope and routes it to the room operation.
func (c *Client) dispatch(frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON.")
		return
	}

	switch env.Type {
	case EventSetNickname:
		var nickname string
		if err := json.Unmarshal(env.Payload, &nickname); err != nil {
			c.SendError(errs.NewError(errs.ErrInvalidParams))
			return
		}
		c.room.HandleSetNickname(c, nickname)

	case EventRejoin:
		var payload RejoinPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.ID == "" {
			// Silent no-op, matching unknown-identity rejoins.
			return
		}
		c.room.HandleRejoin(c, payload)

	case EventMessage:
		var text string
		if err := json.Unmarshal(env.Payload, &text); err != nil {
			c.SendError(errs.NewError(errs.ErrInvalidParams))
			return
		}
		c.room.HandleMessage(c, text)

	case EventBanUser:
		var targetUserID string
		if err := json.Unmarshal(env.Payload, &targetUserID); err != nil {
			c.SendError(errs.NewError(errs.ErrInvalidParams))
			return
		}
		c.room.HandleBanUser(c, targetUserID)

	default:
		c.logger.Warn().Str("event", string(env.Type)).Msg("Client sent unsupported event type.")
	}
}

// WritePump writes queued events to the connection and keeps the heartbeat
// alive. It exits when the send queue is closed or a write fails, closing
// the connection either way.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close on write pump exit.")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline.")
				return
			}

			if !ok {
				// Queue closed: flush a close frame and stop.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message.")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing message.")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping.")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping.")
				return
			}
		}
	}
}

// trySend enqueues a pre-marshaled frame without blocking. A full queue
// drops the frame; deletions and counts are idempotent on the client side,
// so a dropped frame is recovered on the next history load.
func (c *Client) trySend(frame []byte) bool {
	defer func() {
		// Sending on a queue closed by a concurrent teardown panics;
		// such a client simply misses the frame.
		_ = recover()
	}()

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping frame.")
		return false
	}
}

// SendEvent marshals and enqueues an event for this client only.
func (c *Client) SendEvent(t EventType, payload any) {
	frame, err := MarshalEvent(t, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("event", string(t)).Msg("Failed to marshal event.")
		return
	}

	c.trySend(frame)
}

// SendError delivers a typed error event to this client only.
func (c *Client) SendError(customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	c.SendEvent(EventError, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}

// closeSend closes the send queue exactly once. The write pump flushes any
// queued frames, emits a close frame, and shuts the connection down.
func (c *Client) closeSend() {
	c.sendOnce.Do(func() {
		close(c.send)
	})
}
