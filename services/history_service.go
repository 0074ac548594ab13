package services

import (
	"context"
	"log/slog"
	"sort"

	"campus-link/domain"
	"campus-link/errors"
	"campus-link/repositories"
)

type IHistoryService interface {
	History(caller domain.User, otherUserID string) ([]domain.Message, error)
	Partners(caller domain.User) ([]Partner, error)
	Search(ctx context.Context, caller domain.User, query string, limit int) ([]repositories.SearchHit, error)
}

// Partner is a reachable user plus the number of their messages the caller
// has not read yet.
type Partner struct {
	User   domain.User
	Unread int
}

// HistoryService is the synchronous read path over the message log,
// independent of whether either party currently holds a live connection.
type HistoryService struct {
	log      *slog.Logger
	users    repositories.IUserRepository
	messages repositories.IMessageRepository
	index    *repositories.SearchIndex
}

func NewHistoryService(log *slog.Logger, users repositories.IUserRepository,
	messages repositories.IMessageRepository, index *repositories.SearchIndex) *HistoryService {
	return &HistoryService{log: log, users: users, messages: messages, index: index}
}

// History returns the full ordered log of the conversation between the
// caller and otherUserID. Read access requires that either party may
// initiate, which is broader than send access.
func (h *HistoryService) History(caller domain.User, otherUserID string) ([]domain.Message, error) {
	other, err := h.users.GetUser(otherUserID)
	if err != nil {
		return nil, err
	}
	if !domain.CanChat(caller.Role, other.Role) {
		return nil, errors.ErrForbidden
	}
	return h.messages.History(domain.NewRoomID(caller.ID, other.ID))
}

// Partners lists every active user the caller may reach in either direction,
// excluding the caller, with unread counts for the contact picker.
func (h *HistoryService) Partners(caller domain.User) ([]Partner, error) {
	users, err := h.users.ListUsers()
	if err != nil {
		return nil, err
	}
	unread, err := h.messages.UnreadCounts(caller.ID)
	if err != nil {
		return nil, err
	}

	var partners []Partner
	for _, user := range users {
		if user.ID == caller.ID || !user.Active {
			continue
		}
		if !domain.CanChat(caller.Role, user.Role) {
			continue
		}
		partners = append(partners, Partner{User: user, Unread: unread[user.ID]})
	}
	sort.Slice(partners, func(i, j int) bool {
		return partners[i].User.Name < partners[j].User.Name
	})
	return partners, nil
}

// Search runs a full-text query across the caller's own conversations.
func (h *HistoryService) Search(ctx context.Context, caller domain.User, query string, limit int) ([]repositories.SearchHit, error) {
	if h.index == nil {
		return nil, nil
	}
	return h.index.Search(ctx, query, caller.ID, limit)
}
