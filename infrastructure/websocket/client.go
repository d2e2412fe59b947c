package websocket

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"
	"chat-relay/sink"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// client pairs one websocket connection with its relay identity.
// readPump turns inbound frames into commands; writePump drains the
// connection sink back onto the wire.
type client struct {
	id    domain.ConnectionID
	conn  *websocket.Conn
	relay services.IRelayService
	snk   *sink.ConnectionSink
	cfg   Config
	log   *slog.Logger
}

func (c *client) readPump() {
	defer func() {
		// Channel closed: the relay performs the implicit leave.
		c.relay.Disconnect(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Websocket read error", "connection", c.id, "error", err)
			}
			return
		}
		c.dispatch(raw)
	}
}

// dispatch shapes one inbound frame into a relay command. Malformed frames
// are dropped here; blank fields are rejected further down by the router.
func (c *client) dispatch(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug("Dropping unparsable frame", "connection", c.id, "error", err)
		return
	}

	switch env.Event {
	case "join-room":
		var p JoinRoomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.log.Debug("Dropping malformed join-room payload", "error", err)
			return
		}
		c.relay.Dispatch(domain.JoinRoomCommand{Conn: c.id, Room: p.Room, Username: p.Username})

	case "message":
		var p MessageInPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.log.Debug("Dropping malformed message payload", "error", err)
			return
		}
		// Room and sender are resolved from the identity bound at join time;
		// the copies in the payload are not trusted.
		c.relay.Dispatch(domain.PostMessageCommand{
			Conn:      c.id,
			Content:   p.Message,
			CreatedAt: time.Now().UTC(),
		})

	case "leave-room":
		c.relay.Dispatch(domain.LeaveRoomCommand{Conn: c.id})

	default:
		c.log.Debug(errors.ErrUnknownEvent.Error(), "event", env.Event)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.snk.Out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := EncodeEvent(evt)
			if err != nil {
				c.log.Error("Failed to encode outbound event", "event", evt.EventName(), "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
