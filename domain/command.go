package domain

import (
	"time"
)

// Command is an inbound client intent, submitted to the relay one at a time.
type Command interface {
	ConnectionID() ConnectionID
}

type JoinRoomCommand struct {
	Conn     ConnectionID
	Room     string `validate:"required,notblank"`
	Username string `validate:"required,notblank"`
}

func (c JoinRoomCommand) ConnectionID() ConnectionID {
	return c.Conn
}

type LeaveRoomCommand struct {
	Conn ConnectionID
}

func (c LeaveRoomCommand) ConnectionID() ConnectionID {
	return c.Conn
}

type PostMessageCommand struct {
	Conn      ConnectionID
	Content   string `validate:"required,notblank"`
	CreatedAt time.Time
}

func (c PostMessageCommand) ConnectionID() ConnectionID {
	return c.Conn
}

// DisconnectCommand is produced by the transport when a channel closes.
type DisconnectCommand struct {
	Conn ConnectionID
}

func (c DisconnectCommand) ConnectionID() ConnectionID {
	return c.Conn
}
