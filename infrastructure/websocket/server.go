// Package websocket adapts the relay's event-channel boundary to
// gorilla/websocket. It owns the handshake, the read/write pumps and the
// JSON envelope framing; the relay itself never sees a socket.
package websocket

import (
	"chat-relay/services"
	"chat-relay/sink"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type Config struct {
	SendBuffer     int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
}

type Server struct {
	log      *slog.Logger
	relay    services.IRelayService
	cfg      Config
	upgrader websocket.Upgrader
}

func NewServer(log *slog.Logger, relay services.IRelayService, cfg Config) *Server {
	return &Server{
		log:   log,
		relay: relay,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Identity is unvalidated by design; origin policy is left to the
			// deployment in front of the relay.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades one HTTP request to a websocket channel and runs its pumps.
// It blocks until the channel closes, then triggers the implicit leave.
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	snk := sink.NewConnectionSink(s.cfg.SendBuffer)
	id := s.relay.Connect(snk)
	s.log.Debug(fmt.Sprintf("Channel established for connection %s", id))

	c := &client{
		id:    id,
		conn:  conn,
		relay: s.relay,
		snk:   snk,
		cfg:   s.cfg,
		log:   s.log,
	}
	go c.writePump()
	c.readPump()
}
