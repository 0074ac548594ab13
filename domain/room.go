package domain

import "strings"

// RoomID identifies the conversation between exactly two users.
type RoomID string

// roomSeparator never appears in directory user ids (uuid-style [a-z0-9-]),
// which keeps the sort+join injective.
const roomSeparator = "|"

// NewRoomID derives the canonical conversation id for an unordered pair of
// user ids. The result is identical regardless of argument order.
func NewRoomID(a, b string) RoomID {
	if b < a {
		a, b = b, a
	}
	return RoomID(a + roomSeparator + b)
}

// Members returns the two user ids of the conversation.
func (r RoomID) Members() (string, string) {
	a, b, _ := strings.Cut(string(r), roomSeparator)
	return a, b
}

// Has reports whether userID is one of the two conversation members.
func (r RoomID) Has(userID string) bool {
	a, b := r.Members()
	return userID != "" && (a == userID || b == userID)
}

// Other returns the conversation member that is not userID.
func (r RoomID) Other(userID string) (string, bool) {
	a, b := r.Members()
	switch userID {
	case a:
		return b, true
	case b:
		return a, true
	default:
		return "", false
	}
}
