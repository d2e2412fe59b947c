package event

import (
	"chat-relay/domain"
	"time"
)

// DomainEvent is an outbound notification produced by the router.
// Targets are resolved at mutation time so that a broadcast issued before a
// leave still reaches the leaving member.
type DomainEvent interface {
	// EventName is the wire name of the event.
	EventName() string
	// TargetIDs lists the connections this event must be delivered to.
	TargetIDs() []domain.ConnectionID
	// Payload is the JSON-marshalable body sent to each target.
	Payload() any
}

type MessagePayload struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// MessageBroadcast fans one chat text to every member of a room,
// sender included. The sender never locally echoes its own message.
type MessageBroadcast struct {
	Targets []domain.ConnectionID
	Room    domain.RoomName
	Sender  string
	Message string
	At      time.Time
}

func (e MessageBroadcast) EventName() string { return "message" }

func (e MessageBroadcast) TargetIDs() []domain.ConnectionID { return e.Targets }

func (e MessageBroadcast) Payload() any {
	return MessagePayload{Sender: e.Sender, Message: e.Message}
}

type RoomJoinedPayload struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// RoomJoined is delivered only to the joining connection, with the full
// membership snapshot taken right after the add.
type RoomJoined struct {
	Target domain.ConnectionID
	Room   domain.RoomName
	Users  []string
}

func (e RoomJoined) EventName() string { return "room_joined" }

func (e RoomJoined) TargetIDs() []domain.ConnectionID {
	return []domain.ConnectionID{e.Target}
}

func (e RoomJoined) Payload() any {
	return RoomJoinedPayload{Room: string(e.Room), Users: e.Users}
}

// UserJoined notifies the members that were already present before a join.
type UserJoined struct {
	Targets []domain.ConnectionID
	Room    domain.RoomName
	Notice  string
}

func (e UserJoined) EventName() string { return "user_joined" }

func (e UserJoined) TargetIDs() []domain.ConnectionID { return e.Targets }

func (e UserJoined) Payload() any { return e.Notice }

// UserLeft notifies the members remaining after a leave or a disconnect.
type UserLeft struct {
	Targets []domain.ConnectionID
	Room    domain.RoomName
	Notice  string
}

func (e UserLeft) EventName() string { return "user_left" }

func (e UserLeft) TargetIDs() []domain.ConnectionID { return e.Targets }

func (e UserLeft) Payload() any { return e.Notice }

// UsersUpdate carries the membership snapshot after any change.
type UsersUpdate struct {
	Targets []domain.ConnectionID
	Room    domain.RoomName
	Users   []string
}

func (e UsersUpdate) EventName() string { return "users_update" }

func (e UsersUpdate) TargetIDs() []domain.ConnectionID { return e.Targets }

func (e UsersUpdate) Payload() any { return e.Users }
