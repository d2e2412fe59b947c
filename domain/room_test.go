package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_AddAndRemove(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")

	// Given an empty room
	req.True(room.Empty())
	req.Zero(room.Size())

	// When two members are added
	alice := NewConnectionID()
	bob := NewConnectionID()
	room.Add(alice, "alice")
	room.Add(bob, "bob")

	// Then both are members
	req.Equal(2, room.Size())
	req.Len(room.MemberIDs(), 2)

	// When one member is removed
	removed := room.Remove(alice)

	// Then only the other remains
	req.True(removed)
	req.Equal(1, room.Size())
	req.Equal([]string{"bob"}, room.Usernames())
}

func TestRoom_RemoveUnknownMember(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")
	room.Add(NewConnectionID(), "alice")

	// When removing a connection that never joined
	removed := room.Remove(NewConnectionID())

	// Then nothing changes
	req.False(removed)
	req.Equal(1, room.Size())
}

func TestRoom_UsernamesSorted(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")

	// Given members added in no particular order
	room.Add(NewConnectionID(), "zoe")
	room.Add(NewConnectionID(), "alice")
	room.Add(NewConnectionID(), "mallory")

	// Then the snapshot is deterministic
	req.Equal([]string{"alice", "mallory", "zoe"}, room.Usernames())
}

func TestRoom_DuplicateUsernames(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")

	// Given two distinct connections claiming the same username
	room.Add(NewConnectionID(), "alice")
	room.Add(NewConnectionID(), "alice")

	// Then both entries are preserved
	req.Equal(2, room.Size())
	req.Equal([]string{"alice", "alice"}, room.Usernames())
}
