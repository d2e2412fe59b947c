package domain

import "github.com/google/uuid"

// ConnectionID identifies one live transport channel. It is the only handle
// the relay shares between registry, directory and fan-out.
type ConnectionID string

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// Identity is what a connection claimed at join time. Usernames are
// client-supplied strings: no validation, no uniqueness.
type Identity struct {
	Username string
	Room     RoomName
}

// Bound reports whether the connection has joined a room.
func (i Identity) Bound() bool {
	return i.Room != ""
}
