package domain

// JoinResult is the directory's view right after a join was applied.
type JoinResult struct {
	// Users is the sorted membership snapshot after the add,
	// distributed to the joining connection.
	Users []string
	// Recipients is every current member, joiner included.
	Recipients []ConnectionID
	// Prior is set when the join displaced an existing membership
	// (a connection is a member of at most one room at any instant).
	Prior *LeaveResult
}

// LeaveResult is the directory's view right after a leave was applied.
type LeaveResult struct {
	Room RoomName
	// Removed is false when the connection was not a member (idempotent leave).
	Removed bool
	// Users is the sorted snapshot of the remaining members.
	Users []string
	// Recipients is the remaining members, for departure notices.
	Recipients []ConnectionID
}
