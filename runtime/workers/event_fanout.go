package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"time"
)

// EventFanout delivers router events to the targeted connection sinks.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries: once an event is accepted it runs to completion
// against the target list resolved at mutation time, and targets whose
// connection vanished in between are skipped. EventFanout is not a broker.
//
// A single instance consumes the event channel, so the FIFO order produced
// by the relay worker is preserved per room all the way to the sinks.
type EventFanout struct {
	Log            *slog.Logger
	registry       contract.IRegistry
	DomainEvent    chan event.DomainEvent
	TelemetryEvent chan event.Event
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	domainEvent chan event.DomainEvent, telemetryEvent chan event.Event,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		Log:            log,
		registry:       registry,
		DomainEvent:    domainEvent,
		TelemetryEvent: telemetryEvent,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.DomainEvent:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping fan-out")
			return nil
		}
	}
}

// Fanout delivers one event to each of its targets.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	delivered := 0
	for _, target := range evt.TargetIDs() {
		sink, ok := w.registry.SinkFor(target)
		if !ok {
			// Connection closed between mutation and delivery: at-most-once.
			continue
		}

		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		err := sink.Consume(sinkCtx, evt)
		cancel()
		if err != nil {
			w.Log.Debug("Sink refused event", "target", target, "event", evt.EventName(), "error", err)
			w.emitTelemetry(event.Event{
				Type:      event.EventDroppedType,
				CreatedAt: time.Now().UTC(),
				Payload:   event.EventDropped{EventName: evt.EventName(), Room: roomOf(evt)},
			})
			continue
		}
		delivered++
	}

	if m, ok := evt.(event.MessageBroadcast); ok {
		w.emitTelemetry(event.Event{
			Type:      event.MessageFannedOutType,
			CreatedAt: time.Now().UTC(),
			Payload: event.MessageFannedOut{
				Room:       string(m.Room),
				Sender:     m.Sender,
				Recipients: delivered,
				At:         m.At,
			},
		})
	}
}

func (w *EventFanout) emitTelemetry(evt event.Event) {
	select {
	case w.TelemetryEvent <- evt:
	default:
		w.Log.Debug("Observability telemetry event lost")
	}
}

func roomOf(evt event.DomainEvent) string {
	switch e := evt.(type) {
	case event.MessageBroadcast:
		return string(e.Room)
	case event.RoomJoined:
		return string(e.Room)
	case event.UserJoined:
		return string(e.Room)
	case event.UserLeft:
		return string(e.Room)
	case event.UsersUpdate:
		return string(e.Room)
	default:
		return ""
	}
}
