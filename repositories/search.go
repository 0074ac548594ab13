package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"campus-link/domain"

	"github.com/blugelabs/bluge"
)

// SearchHit is one full-text match inside a conversation the caller
// participates in.
type SearchHit struct {
	MessageID string `json:"message_id"`
	Room      string `json:"conversation_id"`
	SenderID  string `json:"sender_id"`
	Body      string `json:"body"`
}

// SearchIndex maintains a bluge full-text index over message bodies.
// Indexing is best-effort: the badger log stays the source of truth and a
// failed index write never fails the send.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(writer *bluge.Writer, log *slog.Logger) *SearchIndex {
	return &SearchIndex{writer: writer, log: log}
}

// Index adds a persisted message to the full-text index. Both participants
// are indexed as keyword terms so queries can be scoped to the caller's own
// conversations.
func (s *SearchIndex) Index(message domain.Message) error {
	memberA, memberB := message.Room.Members()

	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("body", message.Body).StoreValue()).
		AddField(bluge.NewKeywordField("room", string(message.Room)).StoreValue()).
		AddField(bluge.NewKeywordField("sender", message.SenderID).StoreValue()).
		AddField(bluge.NewKeywordField("participant", memberA)).
		AddField(bluge.NewKeywordField("participant", memberB))

	return s.writer.Update(doc.ID(), doc)
}

// Search runs a match query over message bodies, restricted to conversations
// that include userID.
func (s *SearchIndex) Search(ctx context.Context, text, userID string, limit int) ([]SearchHit, error) {
	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(text).SetField("body")).
		AddMust(bluge.NewTermQuery(userID).SetField("participant"))

	reader, err := s.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("search reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Warn("failed to close search reader", "error", err)
		}
	}()

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		hit := SearchHit{}
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "room":
				hit.Room = string(value)
			case "sender":
				hit.SenderID = string(value)
			case "body":
				hit.Body = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, fmt.Errorf("search visit: %w", visitErr)
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("search iterate: %w", err)
	}
	return hits, nil
}
