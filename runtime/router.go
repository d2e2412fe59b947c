package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/samber/lo"
)

// Router is the connection state machine. Each command moves a connection
// between Connected (registered, no identity), Joined (identity bound) and
// Closed (record removed); every reachable state has a defined, non-crashing
// transition. Handle runs to completion before the next command is processed,
// which is the only mutual exclusion the relay needs.
type Router struct {
	log       *slog.Logger
	registry  contract.IRegistry
	directory contract.IDirectory
	validate  *validator.Validate
}

func NewRouter(log *slog.Logger, registry contract.IRegistry, directory contract.IDirectory) *Router {
	v := validator.New()
	// notblank rejects strings that are empty once trimmed. The presentation
	// layer is expected to prevent empty submissions; the core must not trust it.
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Router{
		log:       log,
		registry:  registry,
		directory: directory,
		validate:  v,
	}
}

// Handle applies one inbound command and returns the outbound events it
// produced, in delivery order. Malformed input and stale references are
// dropped silently: there are no fatal conditions inside the relay.
func (r *Router) Handle(cmd domain.Command) []event.DomainEvent {
	identity, ok := r.registry.Lookup(cmd.ConnectionID())
	if !ok {
		// Closed connection: every late event is ignored.
		if _, isDisconnect := cmd.(domain.DisconnectCommand); !isDisconnect {
			r.log.Debug(fmt.Sprintf("Dropping command for closed connection %s", cmd.ConnectionID()))
		}
		return nil
	}

	switch c := cmd.(type) {
	case domain.JoinRoomCommand:
		return r.handleJoin(c, identity)
	case domain.LeaveRoomCommand:
		return r.handleLeave(c, identity)
	case domain.PostMessageCommand:
		return r.handleMessage(c, identity)
	case domain.DisconnectCommand:
		return r.handleDisconnect(c, identity)
	default:
		r.log.Debug(fmt.Sprintf("Unhandled command type %T", cmd))
		return nil
	}
}

func (r *Router) handleJoin(c domain.JoinRoomCommand, identity domain.Identity) []event.DomainEvent {
	if err := r.validate.Struct(c); err != nil {
		r.log.Debug("Rejecting join-room with blank fields", "error", err)
		return nil
	}
	room := domain.RoomName(strings.TrimSpace(c.Room))
	username := strings.TrimSpace(c.Username)

	result := r.directory.Join(room, c.Conn, username)
	r.registry.BindIdentity(c.Conn, username, room)

	var events []event.DomainEvent
	if result.Prior != nil {
		// Implicit leave: the previous room's members are notified with the
		// username that was bound at the time.
		events = append(events, departureEvents(*result.Prior, identity.Username)...)
	}

	events = append(events, event.RoomJoined{
		Target: c.Conn,
		Room:   room,
		Users:  result.Users,
	})

	others := lo.Filter(result.Recipients, func(id domain.ConnectionID, _ int) bool {
		return id != c.Conn
	})
	if len(others) > 0 {
		events = append(events, event.UserJoined{
			Targets: others,
			Room:    room,
			Notice:  fmt.Sprintf("%s joined room", username),
		})
	}

	events = append(events, event.UsersUpdate{
		Targets: result.Recipients,
		Room:    room,
		Users:   result.Users,
	})

	r.log.Info("User joined room", "room", room, "username", username, "connection", c.Conn)
	return events
}

func (r *Router) handleLeave(c domain.LeaveRoomCommand, identity domain.Identity) []event.DomainEvent {
	if !identity.Bound() {
		// Leave without a join is idempotent: no error, no notification.
		return nil
	}

	result := r.directory.Leave(identity.Room, c.Conn)
	r.registry.ClearIdentity(c.Conn)

	r.log.Info("User left room", "room", identity.Room, "username", identity.Username)
	return departureEvents(result, identity.Username)
}

func (r *Router) handleMessage(c domain.PostMessageCommand, identity domain.Identity) []event.DomainEvent {
	if err := r.validate.Struct(c); err != nil {
		r.log.Debug("Rejecting blank message", "error", err)
		return nil
	}
	if !identity.Bound() {
		r.log.Debug(fmt.Sprintf("Dropping message from unjoined connection %s", c.Conn))
		return nil
	}

	// Snapshot of the members at the instant of processing, sender included.
	// A room that vanished concurrently yields no recipients: silent no-op.
	recipients := r.directory.Recipients(identity.Room)
	if len(recipients) == 0 {
		return nil
	}

	return []event.DomainEvent{event.MessageBroadcast{
		Targets: recipients,
		Room:    identity.Room,
		Sender:  identity.Username,
		Message: strings.TrimSpace(c.Content),
		At:      c.CreatedAt,
	}}
}

func (r *Router) handleDisconnect(c domain.DisconnectCommand, identity domain.Identity) []event.DomainEvent {
	room, wasJoined := r.registry.Unregister(c.Conn)
	if !wasJoined {
		return nil
	}

	result := r.directory.Leave(room, c.Conn)
	r.log.Info("User disconnected", "room", room, "username", identity.Username)
	return departureEvents(result, identity.Username)
}

// departureEvents builds the user_left notice and the refreshed membership
// snapshot for the members remaining after a leave or a disconnect.
func departureEvents(result domain.LeaveResult, username string) []event.DomainEvent {
	if !result.Removed || len(result.Recipients) == 0 {
		return nil
	}
	return []event.DomainEvent{
		event.UserLeft{
			Targets: result.Recipients,
			Room:    result.Room,
			Notice:  fmt.Sprintf("%s left room", username),
		},
		event.UsersUpdate{
			Targets: result.Recipients,
			Room:    result.Room,
			Users:   result.Users,
		},
	}
}
