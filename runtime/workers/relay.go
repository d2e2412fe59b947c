package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"log/slog"
)

// Ensure *RelayWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*RelayWorker)(nil)

// RelayWorker is the single consumer of the inbound command channel.
// Exactly one instance runs: each command executes to completion against the
// registry and the directory before the next one is read, so no interleaving
// of two joins to the same room is possible.
type RelayWorker struct {
	router   contract.IRouter
	commands chan domain.Command
	events   chan event.DomainEvent
	log      *slog.Logger
}

func NewRelayWorker(
	router contract.IRouter,
	commands chan domain.Command,
	events chan event.DomainEvent,
	log *slog.Logger) *RelayWorker {
	return &RelayWorker{
		router:   router,
		commands: commands,
		events:   events,
		log:      log,
	}
}

func (w *RelayWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			for _, evt := range w.router.Handle(cmd) {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case w.events <- evt:
				}
			}
		}
	}
}
