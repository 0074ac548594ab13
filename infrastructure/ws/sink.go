package ws

import (
	"context"
	"fmt"
	"log/slog"

	"campus-link/domain/event"
)

// Sink bridges the broadcaster to one live connection. Consume is called by
// the fan-out; the connection's writer loop drains Events onto the socket.
type Sink struct {
	Events chan Envelope
	log    *slog.Logger
}

func NewSink(log *slog.Logger, bufferSize int) *Sink {
	return &Sink{Events: make(chan Envelope, bufferSize), log: log}
}

// Consume converts the domain event to its wire envelope and hands it to the
// connection. A full buffer drops the event rather than stalling the room:
// backpressure from one slow client must not delay the others.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	envelope, err := toEnvelope(e)
	if err != nil {
		return err
	}
	select {
	case s.Events <- envelope:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Warn("connection buffer full, dropping event", "room", string(e.RoomID()))
		return nil
	}
}

func toEnvelope(e event.DomainEvent) (Envelope, error) {
	switch evt := e.(type) {
	case event.MessageSent:
		return newEnvelope(TypeNewMessage, toMessageDTO(evt.Message))
	case event.ConversationRead:
		return newEnvelope(TypeConversationRead, ReadEventPayload{
			ConversationID: string(evt.Room),
			By:             evt.By,
		})
	default:
		return Envelope{}, fmt.Errorf("no wire representation for event %T", e)
	}
}
