package runtime

import (
	"context"
	"testing"

	"campus-link/domain"
	"campus-link/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	id string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Subscribe_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()
	roomID := domain.NewRoomID("alice", "bob")
	sink := Sink{id: "1"}

	// Given no connection is registered
	req.Empty(registry.GetSinksForRoom(roomID))

	// When a connection subscribes a room
	registry.Subscribe(connectionID, roomID, sink)

	// Then its sink is reachable through the room
	req.Len(registry.GetSinksForRoom(roomID), 1)
	req.Contains(registry.GetSinksForRoom(roomID), sink)
}

func TestRegistry_Subscribe_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()
	roomID := domain.NewRoomID("alice", "bob")
	sink := Sink{id: "1"}

	// When a connection joins the same room twice
	registry.Subscribe(connectionID, roomID, sink)
	registry.Subscribe(connectionID, roomID, sink)

	// Then membership state is identical to a single join
	req.Len(registry.GetSinksForRoom(roomID), 1)
}

func TestRegistry_Subscribe_One_Room_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := domain.NewRoomID("alice", "bob")
	sink1 := Sink{id: "1"}
	sink2 := Sink{id: "2"}

	// When two connections subscribe the same room
	registry.Subscribe(uuid.NewString(), roomID, sink1)
	registry.Subscribe(uuid.NewString(), roomID, sink2)

	// Then both sinks are reachable
	sinks := registry.GetSinksForRoom(roomID)
	req.Len(sinks, 2)
	req.Contains(sinks, sink1)
	req.Contains(sinks, sink2)
}

func TestRegistry_Unsubscribe_Keeps_Other_Memberships(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()
	roomAB := domain.NewRoomID("alice", "bob")
	roomAC := domain.NewRoomID("alice", "carol")
	sink := Sink{id: "1"}

	// Given a connection joined two rooms
	registry.Subscribe(connectionID, roomAB, sink)
	registry.Subscribe(connectionID, roomAC, sink)

	// When it leaves one
	registry.Unsubscribe(connectionID, roomAB)

	// Then the other membership survives
	req.Empty(registry.GetSinksForRoom(roomAB))
	req.Len(registry.GetSinksForRoom(roomAC), 1)
}

func TestRegistry_UnsubscribeAll_On_Disconnect(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := uuid.NewString()
	otherID := uuid.NewString()
	roomAB := domain.NewRoomID("alice", "bob")
	roomAC := domain.NewRoomID("alice", "carol")
	sink := Sink{id: "1"}
	otherSink := Sink{id: "2"}

	// Given a connection joined two rooms, one shared with another connection
	registry.Subscribe(connectionID, roomAB, sink)
	registry.Subscribe(connectionID, roomAC, sink)
	registry.Subscribe(otherID, roomAB, otherSink)

	// When the connection disconnects
	registry.UnsubscribeAll(connectionID)

	// Then it is gone from every room, other members untouched
	req.Empty(registry.GetSinksForRoom(roomAC))
	remaining := registry.GetSinksForRoom(roomAB)
	req.Len(remaining, 1)
	req.Contains(remaining, otherSink)
}
