//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"campus-link/domain"
	"campus-link/domain/event"
	"context"
)

// EventSink receives broadcast events for one live connection.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the room-membership table: which connections are joined to
// which room. Mutated only on join and on disconnect.
type IRegistry interface {
	GetSinksForRoom(roomID domain.RoomID) []EventSink
	Subscribe(connectionID string, roomID domain.RoomID, sink EventSink)
	Unsubscribe(connectionID string, roomID domain.RoomID)
	UnsubscribeAll(connectionID string)
}
