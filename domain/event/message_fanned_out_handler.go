package event

import (
	"chat-relay/errors"
	"log/slog"
	"sync"
)

// MessageFannedOutHandler handles events when a message has been fanned out.
// It is triggered each time the relay delivers a chat text to a room.
// Useful for updating observability metrics, logging, or telemetry.
type MessageFannedOutHandler struct {
	log     *slog.Logger
	mu      sync.Mutex
	counter *Counter
}

func NewMessageFannedOutHandler(log *slog.Logger, counter *Counter) *MessageFannedOutHandler {
	return &MessageFannedOutHandler{log: log, counter: counter}
}

func (h *MessageFannedOutHandler) Handle(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch event.Type {
	case MessageFannedOutType:
		if _, ok := event.Payload.(MessageFannedOut); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(MessageFannedOutType)
	}
}
