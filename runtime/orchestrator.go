// Package runtime hosts the relay core: the connection registry, the room
// directory, the event router, and the orchestrator that wires them to the
// supervised workers. It orchestrates the system without containing any
// transport or UI logic.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Orchestrator struct {
	log             *slog.Logger
	supervisor      contract.ISupervisor
	registry        contract.IRegistry
	directory       contract.IDirectory
	router          *Router
	monitoring      *observability.MonitoringManager
	counter         *event.Counter
	commands        chan domain.Command
	domainEvents    chan event.DomainEvent
	telemetryEvents chan event.Event

	sinkTimeout          time.Duration
	metricInterval       time.Duration
	latencyThreshold     time.Duration
	lowCapacityThreshold int
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, directory contract.IDirectory,
	monitoring *observability.MonitoringManager,
	telemetryEvents chan event.Event,
	bufferSize int,
	sinkTimeout, metricInterval, latencyThreshold time.Duration,
	lowCapacityThreshold int) *Orchestrator {
	o := &Orchestrator{
		log:                  log,
		supervisor:           supervisor,
		registry:             registry,
		directory:            directory,
		router:               NewRouter(log, registry, directory),
		monitoring:           monitoring,
		counter:              event.NewCounter(),
		commands:             make(chan domain.Command, bufferSize),
		domainEvents:         make(chan event.DomainEvent, bufferSize),
		telemetryEvents:      telemetryEvents,
		sinkTimeout:          sinkTimeout,
		metricInterval:       metricInterval,
		latencyThreshold:     latencyThreshold,
		lowCapacityThreshold: lowCapacityThreshold,
	}
	monitoring.SetGaugeSource(func() (int, int) {
		return registry.Count(), directory.RoomCount()
	})
	return o
}

// Connect registers a new channel and hands back its connection identifier.
// The sink is the only handle the relay keeps to reach the client; it is
// released deterministically when the channel closes.
func (o *Orchestrator) Connect(sink contract.EventSink) domain.ConnectionID {
	id := o.registry.Register(sink)
	o.monitoring.IncrConnectionsOpened()
	o.log.Debug(fmt.Sprintf("Connection %s registered", id))
	return id
}

// Disconnect is called by the transport when a channel closes. The implicit
// leave of the current room, if any, happens inside the router.
func (o *Orchestrator) Disconnect(id domain.ConnectionID) {
	o.Dispatch(domain.DisconnectCommand{Conn: id})
}

// Dispatch submits one inbound command. Delivery is best-effort: when the
// command channel is saturated the command is dropped, never blocked on.
func (o *Orchestrator) Dispatch(cmd domain.Command) {
	select {
	case o.commands <- cmd:
	default:
		o.monitoring.IncrCommandsDropped()
		o.log.Warn(fmt.Sprintf("Command channel full, dropping command for connection %s", cmd.ConnectionID()))
	}
}

// MembersOf answers "who is online" with a sorted membership snapshot.
func (o *Orchestrator) MembersOf(room domain.RoomName) []string {
	return o.directory.MembersOf(room)
}

func (o *Orchestrator) Counter() *event.Counter {
	return o.counter
}

// Start prepares all workers, registers them with the supervisor and blocks
// until the supervision tree exits.
func (o *Orchestrator) Start(ctx context.Context) error {
	relayWorker := workers.NewRelayWorker(o.router, o.commands, o.domainEvents, o.log)
	fanoutWorker := workers.NewEventFanout(o.log, o.registry, o.domainEvents, o.telemetryEvents, o.sinkTimeout)

	capacityWorker := workers.NewChannelCapacityWorker(o.log, []workers.NamedChannel{
		{Name: "commands", Channel: o.commands},
		{Name: "domain_events", Channel: o.domainEvents},
		{Name: "telemetry_events", Channel: o.telemetryEvents},
	}, o.telemetryEvents, o.metricInterval)

	heartbeatWorker := workers.NewHeartbeatWorker(o.log, o.monitoring, o.metricInterval)

	telemetryWorker := workers.NewTelemetryWorker(o.log, o.telemetryEvents, []event.Handler{
		event.NewMessageFannedOutHandler(o.log, o.counter),
		event.NewChannelCapacityHandler(o.log, o.lowCapacityThreshold),
		event.NewWorkerRestartedAfterPanicHandler(o.log, o.counter),
		event.NewLatencyHandler(o.log, o.latencyThreshold),
	})

	o.supervisor.Add(relayWorker, fanoutWorker, capacityWorker, heartbeatWorker, telemetryWorker)

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown of the orchestrator.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
