package ws

import (
	"encoding/json"
	"time"

	"campus-link/domain"
)

// Client-to-server event types.
const (
	TypeJoin     = "join"
	TypeSend     = "send"
	TypeMarkRead = "mark_read"
)

// Server-to-client event types.
const (
	TypeResult           = "result"
	TypeNewMessage       = "new_message"
	TypeConversationRead = "conversation_read"
)

// Envelope is the wire frame for every event on the live channel.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newEnvelope(eventType string, payload any) (Envelope, error) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, Payload: bytes}, nil
}

type JoinPayload struct {
	TargetUserID string `json:"target_user_id"`
}

type SendPayload struct {
	TargetUserID string `json:"target_user_id" validate:"required"`
	Body         string `json:"body"`
}

type MarkReadPayload struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

// ResultPayload is the direct acknowledgment for a send (and the error
// report for any failed operation). Independent of the room broadcast.
type ResultPayload struct {
	Success bool        `json:"success"`
	Message *MessageDTO `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type MessageDTO struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	ConversationID string    `json:"conversation_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
	Read           bool      `json:"read"`
}

type ReadEventPayload struct {
	ConversationID string `json:"conversation_id"`
	By             string `json:"by"`
}

func toMessageDTO(message domain.Message) MessageDTO {
	return MessageDTO{
		ID:             message.ID.String(),
		SenderID:       message.SenderID,
		RecipientID:    message.RecipientID,
		ConversationID: string(message.Room),
		Body:           message.Body,
		CreatedAt:      message.CreatedAt,
		Read:           message.Read,
	}
}
