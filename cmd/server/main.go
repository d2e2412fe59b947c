package main

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/infrastructure/websocket"
	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	os.Exit(run())
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the transport and background workers.
func run() int {
	// 1. Configuration & Logger
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return exitConfig
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Setup Supervision & Orchestration
	telemetryChan := make(chan event.Event, config.BufferSize)
	sup := workers.NewSupervisor(log, telemetryChan, config.RestartInterval)
	registry := runtime.NewRegistry()
	directory := runtime.NewDirectory()
	monitoring := observability.NewMonitoringManager(log)

	orchestrator := runtime.NewOrchestrator(
		log, sup, registry, directory, monitoring, telemetryChan,
		config.BufferSize, config.SinkTimeout, config.MetricInterval,
		config.LatencyThreshold, config.LowCapacityThreshold,
	)

	// 4. Start the Engine
	engineDone := make(chan error, 1)
	go func() {
		engineDone <- orchestrator.Start(ctx)
	}()
	go monitoring.Listen(ctx)

	// 5. Debug Inspector
	internal.StartDebugServer(config.DebugPort, "/rooms", func() []internal.RoomRow {
		return lo.Map(directory.Rooms(), func(name domain.RoomName, _ int) internal.RoomRow {
			members := directory.MembersOf(name)
			return internal.RoomRow{
				Name:    string(name),
				Size:    len(members),
				Members: strings.Join(members, ", "),
			}
		})
	}, func() map[string]any {
		stats := monitoring.GetLatest()
		return map[string]any{
			"connections":        stats.Connections,
			"rooms":              stats.Rooms,
			"connections_opened": stats.ConnectionsOpened,
			"commands_dropped":   stats.CommandsDropped,
			"alloc_mem_mb":       stats.AllocMemMb,
			"ram_mb":             stats.RamMb,
			"cpu_percent":        stats.CpuPercent,
			"pid_status":         stats.PidStatus,
		}
	})

	// 6. Websocket Server Setup
	relay := services.NewRelayService(orchestrator)
	wsServer := websocket.NewServer(log, relay, websocket.Config{
		SendBuffer:     config.ConnectionBufferSize,
		MaxMessageSize: config.MaxMessageSize,
		WriteWait:      config.WriteWait,
		PongWait:       config.PongWait,
		PingInterval:   config.PingInterval,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsServer.Handle)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: mux}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("websocket server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		log.Error("Server failure", "error", err)
		return exitRuntime
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	orchestrator.Stop()
	<-engineDone
	log.Info("Program stopped cleanly")

	return exitOK
}
