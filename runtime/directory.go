package runtime

import (
	"chat-relay/domain"
	"sort"
	"sync"
)

// Directory maps room name to member set. Mutations are submitted by a single
// relay goroutine in arrival order, so membership changes and message delivery
// share one ordering domain. The mutex exists for snapshot reads coming from
// other goroutines (inspector, monitoring), not to serialize mutations.
type Directory struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomName]*domain.Room
	roomOf map[domain.ConnectionID]domain.RoomName
}

func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[domain.RoomName]*domain.Room),
		roomOf: make(map[domain.ConnectionID]domain.RoomName),
	}
}

// Join adds the connection to the room's member set, creating the room when
// absent, and returns a consistent snapshot taken after the add. When the
// connection is already a member somewhere, an implicit leave of that room
// happens first: a connection is a member of at most one room at any instant.
func (d *Directory) Join(room domain.RoomName, id domain.ConnectionID, username string) domain.JoinResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	var result domain.JoinResult
	if prior, ok := d.roomOf[id]; ok {
		left := d.leaveLocked(prior, id)
		result.Prior = &left
	}

	r, ok := d.rooms[room]
	if !ok {
		r = domain.NewRoom(room)
		d.rooms[room] = r
	}
	r.Add(id, username)
	d.roomOf[id] = room

	result.Users = r.Usernames()
	result.Recipients = r.MemberIDs()
	return result
}

// Leave removes the connection from the room's member set. Leaving a room the
// connection is not a member of is a no-op, not an error.
func (d *Directory) Leave(room domain.RoomName, id domain.ConnectionID) domain.LeaveResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.leaveLocked(room, id)
}

func (d *Directory) leaveLocked(room domain.RoomName, id domain.ConnectionID) domain.LeaveResult {
	result := domain.LeaveResult{Room: room}

	r, ok := d.rooms[room]
	if !ok {
		return result
	}
	if !r.Remove(id) {
		return result
	}
	delete(d.roomOf, id)
	result.Removed = true

	// No empty room is ever stored: deletion is an explicit invariant,
	// not a side effect of the map shrinking.
	if r.Empty() {
		delete(d.rooms, room)
		return result
	}

	result.Users = r.Usernames()
	result.Recipients = r.MemberIDs()
	return result
}

// Recipients returns the current member set for fan-out, sender included.
// A vanished room yields nil, which callers treat as a silent no-op.
func (d *Directory) Recipients(room domain.RoomName) []domain.ConnectionID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[room]
	if !ok {
		return nil
	}
	return r.MemberIDs()
}

// MembersOf answers "who is online" queries with a sorted snapshot.
func (d *Directory) MembersOf(room domain.RoomName) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[room]
	if !ok {
		return nil
	}
	return r.Usernames()
}

func (d *Directory) Rooms() []domain.RoomName {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]domain.RoomName, 0, len(d.rooms))
	for name := range d.rooms {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
