package services

import (
	"context"
	"log/slog"
	"testing"

	"campus-link/domain"
	"campus-link/errors"

	"github.com/stretchr/testify/require"
)

func newHistoryService(f *fixture) *HistoryService {
	return NewHistoryService(slog.Default(), f.users, f.messages, nil)
}

func TestHistory_Returns_Sent_Messages_In_Order(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	history := newHistoryService(f)

	// Given a short exchange
	first, err := f.chat.Send(context.Background(), student, coordinator.ID, "first")
	req.NoError(err)
	_, err = f.chat.Send(context.Background(), coordinator, student.ID, "second")
	req.NoError(err)
	last, err := f.chat.Send(context.Background(), student, coordinator.ID, "third")
	req.NoError(err)

	// When either side reads the conversation
	messages, err := history.History(student, coordinator.ID)
	req.NoError(err)

	// Then the log is complete, ordered, and byte-identical to what was acked
	req.Len(messages, 3)
	req.Equal(first, messages[0])
	req.Equal(last, messages[2])

	mirrored, err := history.History(coordinator, student.ID)
	req.NoError(err)
	req.Equal(messages, mirrored)
}

func TestHistory_Unreachable_Pair_Forbidden(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	history := newHistoryService(f)

	// Admin and student cannot chat in either direction
	_, err := history.History(admin, student.ID)
	req.ErrorIs(err, errors.ErrForbidden)

	_, err = history.History(student, admin.ID)
	req.ErrorIs(err, errors.ErrForbidden)
}

func TestHistory_Readable_When_Either_Direction_Allowed(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	history := newHistoryService(f)

	// admin<->coordinator is reachable, so both sides may read that log
	_, err := f.chat.Send(context.Background(), coordinator, admin.ID, "weekly report")
	req.NoError(err)

	messages, err := history.History(admin, coordinator.ID)
	req.NoError(err)
	req.Len(messages, 1)
}

func TestHistory_Unknown_User(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	history := newHistoryService(f)

	_, err := history.History(student, "ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestHistory_Empty_Conversation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	history := newHistoryService(f)

	messages, err := history.History(student, alumni.ID)
	req.NoError(err)
	req.Empty(messages)
}

func TestPartners_Filters_And_Sorts(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	history := newHistoryService(f)

	// When the student asks for reachable partners
	partners, err := history.Partners(student)
	req.NoError(err)

	// Then the list excludes the caller, the inactive student, and the admin,
	// sorted by display name
	req.Len(partners, 2)
	req.Equal(alumni.ID, partners[0].User.ID)
	req.Equal(coordinator.ID, partners[1].User.ID)
}

func TestPartners_Carries_Unread_Counts(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	history := newHistoryService(f)

	// Given two unread messages from the coordinator and one from the alumni
	for i := 0; i < 2; i++ {
		_, err := f.chat.Send(context.Background(), coordinator, student.ID, "pending")
		req.NoError(err)
	}
	_, err := f.chat.Send(context.Background(), alumni, student.ID, "hey")
	req.NoError(err)

	partners, err := history.Partners(student)
	req.NoError(err)
	req.Len(partners, 2)
	req.Equal(1, partners[0].Unread)
	req.Equal(2, partners[1].Unread)

	// When the coordinator conversation is acknowledged
	req.NoError(f.chat.MarkRead(context.Background(), student, domain.NewRoomID(student.ID, coordinator.ID)))

	partners, err = history.Partners(student)
	req.NoError(err)
	req.Equal(0, partners[1].Unread)
	req.Equal(1, partners[0].Unread)
}

func TestSearch_Without_Index_Is_Disabled(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	history := newHistoryService(f)

	hits, err := history.Search(context.Background(), student, "anything", 10)
	req.NoError(err)
	req.Nil(hits)
}
