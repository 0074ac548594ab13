package event

import (
	"campus-link/domain"
)

// DomainEvent is anything the broadcaster may push to room members.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// MessageSent carries a freshly persisted message to every connection
// joined to its room, the sender included.
type MessageSent struct {
	Message domain.Message
}

func (m MessageSent) RoomID() domain.RoomID {
	return m.Message.Room
}

// ConversationRead signals that By has acknowledged all messages addressed
// to them in the room. Informational only, no message data.
type ConversationRead struct {
	Room domain.RoomID
	By   string
}

func (c ConversationRead) RoomID() domain.RoomID {
	return c.Room
}
