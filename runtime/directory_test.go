package runtime

import (
	"chat-relay/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectory_Join_CreatesRoomOnDemand(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	alice := domain.NewConnectionID()

	// Given no room exists
	req.Zero(directory.RoomCount())

	// When the first member joins
	result := directory.Join("lobby", alice, "alice")

	// Then the room exists with one member
	req.Equal(1, directory.RoomCount())
	req.Equal([]string{"alice"}, result.Users)
	req.Equal([]domain.ConnectionID{alice}, result.Recipients)
	req.Nil(result.Prior)
}

func TestDirectory_Join_SecondMember(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	alice := domain.NewConnectionID()
	bob := domain.NewConnectionID()
	directory.Join("lobby", alice, "alice")

	// When a second member joins
	result := directory.Join("lobby", bob, "bob")

	// Then the snapshot covers both, recipients include both
	req.Equal([]string{"alice", "bob"}, result.Users)
	req.Len(result.Recipients, 2)
	req.Equal(1, directory.RoomCount())
}

func TestDirectory_Join_ImplicitLeaveOfPriorRoom(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	alice := domain.NewConnectionID()
	bob := domain.NewConnectionID()
	directory.Join("lobby", alice, "alice")
	directory.Join("lobby", bob, "bob")

	// When a member joins another room without leaving first
	result := directory.Join("games", alice, "alice")

	// Then the prior room saw a leave
	req.NotNil(result.Prior)
	req.Equal("lobby", string(result.Prior.Room))
	req.True(result.Prior.Removed)
	req.Equal([]string{"bob"}, result.Prior.Users)

	// And the member belongs to exactly one room
	req.Equal([]string{"alice"}, directory.MembersOf("games"))
	req.Equal([]string{"bob"}, directory.MembersOf("lobby"))
}

func TestDirectory_Leave_LastMemberDeletesRoom(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	alice := domain.NewConnectionID()
	directory.Join("lobby", alice, "alice")

	// When the last member leaves
	result := directory.Leave("lobby", alice)

	// Then the room is gone, not empty
	req.True(result.Removed)
	req.Empty(result.Recipients)
	req.Zero(directory.RoomCount())
	req.Nil(directory.Recipients("lobby"))
}

func TestDirectory_Leave_IsIdempotent(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	alice := domain.NewConnectionID()
	directory.Join("lobby", alice, "alice")
	directory.Leave("lobby", alice)

	// When leaving again
	result := directory.Leave("lobby", alice)

	// Then nothing happens
	req.False(result.Removed)
}

func TestDirectory_Recipients_IncludeEveryMember(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	alice := domain.NewConnectionID()
	bob := domain.NewConnectionID()
	directory.Join("lobby", alice, "alice")
	directory.Join("lobby", bob, "bob")

	// Then the fan-out set includes the sender as well
	recipients := directory.Recipients("lobby")
	req.Len(recipients, 2)
	req.Contains(recipients, alice)
	req.Contains(recipients, bob)
}

func TestDirectory_Rooms_SortedSnapshot(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory()
	directory.Join("zulu", domain.NewConnectionID(), "alice")
	directory.Join("alpha", domain.NewConnectionID(), "bob")

	// Then room listing is deterministic
	req.Equal([]domain.RoomName{"alpha", "zulu"}, directory.Rooms())
}
