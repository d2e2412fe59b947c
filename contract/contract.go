//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the connection registry: it owns every connection record and
// resolves a connection to its identity and outbound sink. It holds no
// cross-connection state.
type IRegistry interface {
	Register(sink EventSink) domain.ConnectionID
	BindIdentity(id domain.ConnectionID, username string, room domain.RoomName)
	ClearIdentity(id domain.ConnectionID)
	Unregister(id domain.ConnectionID) (domain.RoomName, bool)
	Lookup(id domain.ConnectionID) (domain.Identity, bool)
	SinkFor(id domain.ConnectionID) (EventSink, bool)
	Count() int
}

// IRouter turns one inbound command into the outbound events it produces,
// in delivery order.
type IRouter interface {
	Handle(cmd domain.Command) []event.DomainEvent
}

// IDirectory is the room directory: room name to member set, with
// membership-consistency guarantees. Mutations are applied in submission order.
type IDirectory interface {
	Join(room domain.RoomName, id domain.ConnectionID, username string) domain.JoinResult
	Leave(room domain.RoomName, id domain.ConnectionID) domain.LeaveResult
	Recipients(room domain.RoomName) []domain.ConnectionID
	MembersOf(room domain.RoomName) []string
	Rooms() []domain.RoomName
	RoomCount() int
}
