package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewRoomID_Is_Order_Independent(t *testing.T) {
	req := require.New(t)

	for i := 0; i < 50; i++ {
		a := uuid.NewString()
		b := uuid.NewString()
		req.Equal(NewRoomID(a, b), NewRoomID(b, a))
	}
}

func TestNewRoomID_Distinct_Pairs_Never_Collide(t *testing.T) {
	req := require.New(t)

	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString()}
	seen := make(map[RoomID]struct{})
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			room := NewRoomID(ids[i], ids[j])
			_, dup := seen[room]
			req.False(dup, "collision for pair (%s, %s)", ids[i], ids[j])
			seen[room] = struct{}{}
		}
	}
}

func TestRoomID_Members_And_Has(t *testing.T) {
	req := require.New(t)
	room := NewRoomID("bob", "alice")

	a, b := room.Members()
	req.Equal("alice", a)
	req.Equal("bob", b)

	req.True(room.Has("alice"))
	req.True(room.Has("bob"))
	req.False(room.Has("carol"))
	req.False(room.Has(""))
}

func TestRoomID_Other(t *testing.T) {
	req := require.New(t)
	room := NewRoomID("alice", "bob")

	other, ok := room.Other("alice")
	req.True(ok)
	req.Equal("bob", other)

	other, ok = room.Other("bob")
	req.True(ok)
	req.Equal("alice", other)

	_, ok = room.Other("carol")
	req.False(ok)
}
