// Package domain contains core concepts of the messaging system.
// This file defines Message events and related rules.
// Messages are immutable once persisted, except for the read flag.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents one direct message inside a conversation.
type Message struct {
	ID          uuid.UUID // unique identifier
	SenderID    string
	RecipientID string
	Room        RoomID
	Body        string
	CreatedAt   time.Time // server-assigned, non-decreasing per room
	Read        bool
}
