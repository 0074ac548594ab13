//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campus-link/contract"
	"campus-link/domain"
	"campus-link/domain/event"
	"campus-link/errors"
	"campus-link/moderation"
	"campus-link/repositories"

	"github.com/google/uuid"
)

type IChatService interface {
	Send(ctx context.Context, sender domain.User, targetUserID, body string) (domain.Message, error)
	Join(connectionID string, self domain.User, targetUserID string, sink contract.EventSink)
	Leave(connectionID string)
	MarkRead(ctx context.Context, caller domain.User, room domain.RoomID) error
}

// ChatService routes a validated outbound message to every connection joined
// to the target conversation, after persisting it. Persistence order is
// authoritative: a message is either stored and then broadcast, or neither.
type ChatService struct {
	log         *slog.Logger
	users       repositories.IUserRepository
	messages    repositories.IMessageRepository
	index       *repositories.SearchIndex
	registry    contract.IRegistry
	moderator   moderation.Moderator
	sinkTimeout time.Duration
	maxBodyLen  int
}

func NewChatService(log *slog.Logger, users repositories.IUserRepository,
	messages repositories.IMessageRepository, index *repositories.SearchIndex,
	registry contract.IRegistry, moderator moderation.Moderator,
	sinkTimeout time.Duration, maxBodyLen int) *ChatService {
	return &ChatService{
		log:         log,
		users:       users,
		messages:    messages,
		index:       index,
		registry:    registry,
		moderator:   moderator,
		sinkTimeout: sinkTimeout,
		maxBodyLen:  maxBodyLen,
	}
}

// Send validates, persists, and broadcasts one message. The returned message
// carries the server-assigned id and timestamp and doubles as the direct
// acknowledgment to the caller, independent of the room broadcast.
func (s *ChatService) Send(ctx context.Context, sender domain.User, targetUserID, body string) (domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return domain.Message{}, errors.ErrInvalidMessage
	}
	if s.maxBodyLen > 0 && len(body) > s.maxBodyLen {
		return domain.Message{}, errors.ErrInvalidMessage
	}
	if targetUserID == "" || targetUserID == sender.ID {
		return domain.Message{}, errors.ErrInvalidTarget
	}

	target, err := s.users.GetUser(targetUserID)
	if err != nil {
		return domain.Message{}, errors.ErrRecipientNotFound
	}

	// An inactive recipient is unreachable whatever the roles say.
	if !target.Active {
		return domain.Message{}, errors.ErrForbidden
	}
	if !domain.CanSend(sender.Role, target.Role) {
		return domain.Message{}, errors.ErrForbidden
	}

	masked, censored := s.moderator.Censor(body)
	if len(censored) > 0 {
		s.log.Warn("censored words masked",
			"sender_id", sender.ID,
			"lang", moderation.DetectLang(body),
			"count", len(censored))
	}

	message := domain.Message{
		ID:          uuid.New(),
		SenderID:    sender.ID,
		RecipientID: target.ID,
		Room:        domain.NewRoomID(sender.ID, target.ID),
		Body:        masked,
		Read:        false,
	}

	persisted, err := s.messages.Append(message)
	if err != nil {
		return domain.Message{}, err
	}

	if s.index != nil {
		if err := s.index.Index(persisted); err != nil {
			s.log.Warn("failed to index message", "message_id", persisted.ID.String(), "error", err)
		}
	}

	s.broadcast(ctx, event.MessageSent{Message: persisted})
	return persisted, nil
}

// Join subscribes the connection to the conversation with targetUserID.
// Presence only: no policy check, and the target does not have to exist yet.
// Invalid targets silently no-op.
func (s *ChatService) Join(connectionID string, self domain.User, targetUserID string, sink contract.EventSink) {
	if targetUserID == "" || targetUserID == self.ID {
		return
	}
	room := domain.NewRoomID(self.ID, targetUserID)
	s.registry.Subscribe(connectionID, room, sink)
}

// Leave drops the connection from every room it had joined.
func (s *ChatService) Leave(connectionID string) {
	s.registry.UnsubscribeAll(connectionID)
}

// MarkRead bulk-acknowledges every message in the room addressed to the
// caller, then notifies room members that a read event occurred.
func (s *ChatService) MarkRead(ctx context.Context, caller domain.User, room domain.RoomID) error {
	if !room.Has(caller.ID) {
		return errors.ErrForbidden
	}
	updated, err := s.messages.MarkRead(room, caller.ID)
	if err != nil {
		return err
	}
	s.log.Debug("conversation acknowledged", "room", string(room), "by", caller.ID, "updated", updated)

	s.broadcast(ctx, event.ConversationRead{Room: room, By: caller.ID})
	return nil
}

// broadcast pushes the event to every sink joined to its room. Delivery is
// best-effort per connection: one slow or dead sink never blocks the others
// past the sink timeout.
func (s *ChatService) broadcast(ctx context.Context, e event.DomainEvent) {
	sinks := s.registry.GetSinksForRoom(e.RoomID())
	if len(sinks) == 0 {
		return
	}

	deliveryCtx, cancel := context.WithTimeout(ctx, s.sinkTimeout)
	defer cancel()

	for _, sink := range sinks {
		if err := sink.Consume(deliveryCtx, e); err != nil {
			s.log.Warn("failed to deliver event", "room", string(e.RoomID()), "error", err)
		}
	}
}
