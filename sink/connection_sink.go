// Package sink provides per-connection event sinks: the seam between the
// relay's fan-out and the transport's write side.
package sink

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
)

// ConnectionSink buffers outbound events for one connection.
type ConnectionSink struct {
	Out chan event.DomainEvent
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{Out: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the fan-out worker.
// It hands the event to the owner of the channel; the transport's write pump
// takes it from there. A saturated buffer drops the event rather than stall
// the fan-out of everyone else: delivery is best-effort, at-most-once.
func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Out <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}

// Close releases the channel once the transport is done with it.
func (s *ConnectionSink) Close() {
	close(s.Out)
}
