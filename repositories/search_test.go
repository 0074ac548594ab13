package repositories

import (
	"context"
	"log/slog"
	"testing"

	"campus-link/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *SearchIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewSearchIndex(writer, slog.Default())
}

func indexedMessage(room domain.RoomID, sender, recipient, body string) domain.Message {
	return domain.Message{
		ID:          uuid.New(),
		Room:        room,
		SenderID:    sender,
		RecipientID: recipient,
		Body:        body,
	}
}

func Test_Search_Finds_Message_By_Body(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	room := domain.NewRoomID("alice", "bob")
	message := indexedMessage(room, "alice", "bob", "please resubmit the internship report")
	req.NoError(index.Index(message))

	hits, err := index.Search(context.Background(), "internship", "alice", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(message.ID.String(), hits[0].MessageID)
	req.Equal(string(room), hits[0].Room)
	req.Equal("alice", hits[0].SenderID)
}

func Test_Search_Restricted_To_Own_Conversations(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	// Given the same word in two conversations with different participants
	req.NoError(index.Index(indexedMessage(domain.NewRoomID("alice", "bob"), "alice", "bob", "budget review")))
	req.NoError(index.Index(indexedMessage(domain.NewRoomID("carol", "dave"), "carol", "dave", "budget review")))

	// When carol searches
	hits, err := index.Search(context.Background(), "budget", "carol", 10)
	req.NoError(err)

	// Then only her conversation matches
	req.Len(hits, 1)
	req.Equal(string(domain.NewRoomID("carol", "dave")), hits[0].Room)
}

func Test_Search_No_Match(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.Index(indexedMessage(domain.NewRoomID("alice", "bob"), "alice", "bob", "hello there")))

	hits, err := index.Search(context.Background(), "absent", "alice", 10)
	req.NoError(err)
	req.Empty(hits)
}
