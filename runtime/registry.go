package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"sync"
)

type record struct {
	identity domain.Identity
	sink     contract.EventSink
}

// Registry owns one record per live transport channel: its outbound sink and
// the identity it has been bound to. The directory only ever references a
// connection by identifier, never a copy of these mutable fields.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]*record
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnectionID]*record),
	}
}

// Register creates an unbound connection record. It never fails.
func (r *Registry) Register(sink contract.EventSink) domain.ConnectionID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := domain.NewConnectionID()
	r.conns[id] = &record{sink: sink}
	return id
}

// BindIdentity associates a username and room with a connection,
// overwriting any prior binding. Rejoining a different room without
// reconnecting is supported this way. Username uniqueness is not enforced.
func (r *Registry) BindIdentity(id domain.ConnectionID, username string, room domain.RoomName) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.conns[id]; ok {
		rec.identity = domain.Identity{Username: username, Room: room}
	}
}

// ClearIdentity resets a connection to the connected-but-unjoined state.
func (r *Registry) ClearIdentity(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.conns[id]; ok {
		rec.identity = domain.Identity{}
	}
}

// Unregister removes the record and reports the last-known room, if any,
// so the caller can trigger a leave.
func (r *Registry) Unregister(id domain.ConnectionID) (domain.RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.conns[id]
	if !ok {
		return "", false
	}
	delete(r.conns, id)
	return rec.identity.Room, rec.identity.Bound()
}

func (r *Registry) Lookup(id domain.ConnectionID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.conns[id]
	if !ok {
		return domain.Identity{}, false
	}
	return rec.identity, true
}

func (r *Registry) SinkFor(id domain.ConnectionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.conns[id]
	if !ok || rec.sink == nil {
		return nil, false
	}
	return rec.sink, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
