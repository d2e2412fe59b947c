package websocket

import (
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) *httptest.Server {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	telemetryChan := make(chan event.Event, 64)
	supervisor := workers.NewSupervisor(log, telemetryChan, 200*time.Millisecond)
	registry := runtime.NewRegistry()
	directory := runtime.NewDirectory()
	monitoring := observability.NewMonitoringManager(log)

	orchestrator := runtime.NewOrchestrator(
		log, supervisor, registry, directory, monitoring, telemetryChan,
		64, 3*time.Second, 500*time.Millisecond, 500*time.Millisecond, 10,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = orchestrator.Start(ctx) }()

	server := NewServer(log, services.NewRelayService(orchestrator), Config{
		SendBuffer:     64,
		MaxMessageSize: 4096,
		WriteWait:      5 * time.Second,
		PongWait:       10 * time.Second,
		PingInterval:   9 * time.Second,
	})

	ts := httptest.NewServer(http.HandlerFunc(server.Handle))
	t.Cleanup(func() {
		ts.Close()
		orchestrator.Stop()
		cancel()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	req := require.New(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, eventName string, payload any) {
	req := require.New(t)
	data, err := json.Marshal(payload)
	req.NoError(err)
	frame, err := json.Marshal(Envelope{Event: eventName, Data: data})
	req.NoError(err)
	req.NoError(conn.WriteMessage(websocket.TextMessage, frame))
}

func readFrame(t *testing.T, conn *websocket.Conn, eventName string) json.RawMessage {
	req := require.New(t)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	req.NoError(err)

	var env Envelope
	req.NoError(json.Unmarshal(raw, &env))
	req.Equal(eventName, env.Event)
	return env.Data
}

func TestServer_JoinAndMessageOverTheWire(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	// Given alice joins the lobby
	alice := dial(t, ts)
	sendFrame(t, alice, "join-room", JoinRoomPayload{Room: "lobby", Username: "alice"})

	var joined struct {
		Room  string   `json:"room"`
		Users []string `json:"users"`
	}
	req.NoError(json.Unmarshal(readFrame(t, alice, "room_joined"), &joined))
	req.Equal("lobby", joined.Room)
	req.Equal([]string{"alice"}, joined.Users)
	readFrame(t, alice, "users_update")

	// When bob joins and alice posts a message
	bob := dial(t, ts)
	sendFrame(t, bob, "join-room", JoinRoomPayload{Room: "lobby", Username: "bob"})
	readFrame(t, bob, "room_joined")

	var notice string
	req.NoError(json.Unmarshal(readFrame(t, alice, "user_joined"), &notice))
	req.Equal("bob joined room", notice)
	readFrame(t, alice, "users_update")
	readFrame(t, bob, "users_update")

	sendFrame(t, alice, "message", MessageInPayload{Message: "hello bob"})

	// Then the broadcast reaches both, sender included
	var msg struct {
		Sender  string `json:"sender"`
		Message string `json:"message"`
	}
	req.NoError(json.Unmarshal(readFrame(t, alice, "message"), &msg))
	req.Equal("alice", msg.Sender)
	req.Equal("hello bob", msg.Message)

	req.NoError(json.Unmarshal(readFrame(t, bob, "message"), &msg))
	req.Equal("hello bob", msg.Message)
}

func TestServer_DisconnectNotifiesRoom(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	alice := dial(t, ts)
	sendFrame(t, alice, "join-room", JoinRoomPayload{Room: "lobby", Username: "alice"})
	readFrame(t, alice, "room_joined")
	readFrame(t, alice, "users_update")

	bob := dial(t, ts)
	sendFrame(t, bob, "join-room", JoinRoomPayload{Room: "lobby", Username: "bob"})
	readFrame(t, bob, "room_joined")
	readFrame(t, alice, "user_joined")
	readFrame(t, alice, "users_update")
	readFrame(t, bob, "users_update")

	// When bob's channel drops without a leave-room frame
	req.NoError(bob.Close())

	// Then alice is notified of the departure
	var notice string
	req.NoError(json.Unmarshal(readFrame(t, alice, "user_left"), &notice))
	req.Equal("bob left room", notice)

	var users []string
	req.NoError(json.Unmarshal(readFrame(t, alice, "users_update"), &users))
	req.Equal([]string{"alice"}, users)
}

func TestServer_MalformedFrameIsIgnored(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	alice := dial(t, ts)
	sendFrame(t, alice, "join-room", JoinRoomPayload{Room: "lobby", Username: "alice"})
	readFrame(t, alice, "room_joined")
	readFrame(t, alice, "users_update")

	// When garbage and unknown events arrive
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("not json at all")))
	sendFrame(t, alice, "no-such-event", map[string]string{})

	// Then the connection survives and keeps relaying
	sendFrame(t, alice, "message", MessageInPayload{Message: "still alive"})
	var msg struct {
		Sender  string `json:"sender"`
		Message string `json:"message"`
	}
	req.NoError(json.Unmarshal(readFrame(t, alice, "message"), &msg))
	req.Equal("still alive", msg.Message)
}
