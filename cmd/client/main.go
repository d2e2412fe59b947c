package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=ws://localhost:8080/ws"`
	Room      string `env:"CHAT_ROOM,default=lobby"`
	Username  string `env:"CHAT_USERNAME,required=true"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
}

// envelope mirrors the wire framing used by the relay.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type messagePayload struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type roomJoinedPayload struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the websocket client lifecycle, configuration loading and the
// terminal read/print loops.
func run() (int, error) {
	// 1. Load configuration: .env first (optional), then the environment.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Establish the websocket channel to the relay.
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerURL, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	// 4. Join the configured room.
	if err := send(conn, "join-room", map[string]string{
		"room":     config.Room,
		"username": config.Username,
	}); err != nil {
		return exitRuntime, fmt.Errorf("failed to join room: %w", err)
	}

	color.Cyanln(fmt.Sprintf(">>> Connected to %s as %q, room %q (Ctrl+C to quit, /who for members)",
		config.ServerURL, config.Username, config.Room))

	// lastUsers is refreshed by every users_update so /who renders locally
	// without a round-trip.
	var mu sync.Mutex
	var lastUsers []string

	// 5. Reception loop. Ends when the server closes the channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				color.Redln("<<< offline >>>")
				return
			}
			render(raw, &mu, &lastUsers)
		}
	}()

	// 6. Input loop: every line becomes a message, slash commands are local.
	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- scanner.Text()
		}
		close(input)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			// Best effort: tell the relay we are leaving before closing.
			_ = send(conn, "leave-room", map[string]string{})
			return exitOK, nil

		case <-done:
			return exitOK, nil

		case line, ok := <-input:
			if !ok {
				return exitOK, nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if line == "/who" {
				mu.Lock()
				printMembers(config.Room, lastUsers)
				mu.Unlock()
				continue
			}
			if err := send(conn, "message", map[string]string{"message": line}); err != nil {
				return exitRuntime, fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

func send(conn *websocket.Conn, eventName string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(envelope{Event: eventName, Data: data})
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// render prints one server event to the terminal.
func render(raw []byte, mu *sync.Mutex, lastUsers *[]string) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}

	switch env.Event {
	case "message":
		var p messagePayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		color.Printf("<suc>%s</>: %s\n", p.Sender, p.Message)

	case "room_joined":
		var p roomJoinedPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return
		}
		color.Greenln(fmt.Sprintf("--- joined %q, %d online", p.Room, len(p.Users)))

	case "user_joined", "user_left":
		var notice string
		if json.Unmarshal(env.Data, &notice) != nil {
			return
		}
		color.Grayln("--- " + notice)

	case "users_update":
		var users []string
		if json.Unmarshal(env.Data, &users) != nil {
			return
		}
		mu.Lock()
		*lastUsers = users
		mu.Unlock()
	}
}

// printMembers renders the latest membership snapshot as a table.
func printMembers(room string, users []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", fmt.Sprintf("Room %q", room)})
	for i, user := range users {
		table.Append([]string{fmt.Sprintf("%d", i+1), user})
	}
	table.Render()
}
