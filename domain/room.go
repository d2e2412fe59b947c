package domain

import (
	"sort"

	"github.com/samber/lo"
)

// RoomName is a client-supplied, case-sensitive room identifier.
// It is guaranteed non-blank by the router before it reaches the directory.
type RoomName string

// Room holds the member set of one named room.
// A room with zero members is never stored in the directory.
type Room struct {
	Name    RoomName
	members map[ConnectionID]string
}

func NewRoom(name RoomName) *Room {
	return &Room{
		Name:    name,
		members: make(map[ConnectionID]string),
	}
}

func (r *Room) Add(id ConnectionID, username string) {
	r.members[id] = username
}

// Remove reports whether the connection was actually a member.
func (r *Room) Remove(id ConnectionID) bool {
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	return true
}

func (r *Room) Empty() bool {
	return len(r.members) == 0
}

func (r *Room) Size() int {
	return len(r.members)
}

// Usernames returns a sorted membership snapshot.
// Duplicate usernames are permitted and appear once per connection.
func (r *Room) Usernames() []string {
	users := lo.Values(r.members)
	sort.Strings(users)
	return users
}

// MemberIDs returns the current member connections, sender included on broadcast.
func (r *Room) MemberIDs() []ConnectionID {
	return lo.Keys(r.members)
}
