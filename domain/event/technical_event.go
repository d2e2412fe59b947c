package event

import (
	"time"
)

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
	MessageFannedOutType    Type = "MESSAGE_FANNED_OUT"
	EventDroppedType        Type = "EVENT_DROPPED"
)

// Event is a technical telemetry envelope, distinct from DomainEvent.
// Losing one is acceptable: telemetry is sampled, never load-bearing.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

type MessageFannedOut struct {
	Room       string
	Sender     string
	Recipients int
	At         time.Time
}

type EventDropped struct {
	EventName string
	Room      string
}
