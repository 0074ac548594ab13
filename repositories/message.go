//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"campus-link/domain"
	"campus-link/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Append(message domain.Message) (domain.Message, error)
	History(room domain.RoomID) ([]domain.Message, error)
	MarkRead(room domain.RoomID, recipientID string) (int, error)
	UnreadCounts(recipientID string) (map[string]int, error)
}

// MessageRepository persists the per-conversation message log in BadgerDB.
//
// The key is formatted as "msg:{room}:{seq_padded}" where seq comes from a
// per-room badger sequence. 20-digit zero padding makes the lexicographic
// prefix scan return strict append order, independent of clock resolution.
// Timestamps are additionally clamped non-decreasing per room so no reader
// ever observes them going backwards.
//
// Unread counters live under "unread:{recipient}:{sender}", incremented on
// append and cleared on acknowledgment, so UnreadCounts reads one key per
// partner instead of scanning the log.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger

	mu     sync.Mutex
	seqs   map[domain.RoomID]*badger.Sequence
	lastAt map[domain.RoomID]time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{
		db:     db,
		log:    log,
		seqs:   make(map[domain.RoomID]*badger.Sequence),
		lastAt: make(map[domain.RoomID]time.Time),
	}
}

// DiskMessage is the stored representation of a message.
type DiskMessage struct {
	ID          string    `json:"id"`
	Room        string    `json:"room"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Body        string    `json:"body"`
	At          time.Time `json:"at"`
	Read        bool      `json:"read"`
}

// Append assigns the server-side timestamp and sequence position, then
// persists the message. The whole assignment is a critical section: two
// concurrent sends into the same room can never swap sequence positions.
func (m *MessageRepository) Append(message domain.Message) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq, err := m.sequenceLocked(message.Room)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	n, err := seq.Next()
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}

	now := time.Now().UTC()
	if last, ok := m.lastAt[message.Room]; ok && now.Before(last) {
		now = last
	}
	m.lastAt[message.Room] = now
	message.CreatedAt = now

	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}

	key := messageKey(message.Room, n)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return incrementUnread(txn, message.RecipientID, message.SenderID)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return message, nil
}

// History returns every message of the room in ascending append order.
func (m *MessageRepository) History(room domain.RoomID) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := roomPrefix(room)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				message, err := toMessage(value)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return messages, nil
}

// MarkRead flips the read flag on every message in the room addressed to
// recipientID. Messages addressed to the other party are untouched.
// Serialized with Append so the counter writes never hit a transaction
// conflict.
func (m *MessageRepository) MarkRead(room domain.RoomID, recipientID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := 0
	err := m.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := roomPrefix(room)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)

			var disk DiskMessage
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &disk)
			})
			if err != nil {
				return err
			}
			if disk.RecipientID != recipientID || disk.Read {
				continue
			}

			disk.Read = true
			bytes, err := json.Marshal(disk)
			if err != nil {
				return err
			}
			if err := txn.Set(key, bytes); err != nil {
				return err
			}
			updated++
		}

		// Everything from the other member is read now.
		if updated > 0 {
			if sender, ok := room.Other(recipientID); ok {
				if err := txn.Delete(unreadKey(recipientID, sender)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return updated, nil
}

// UnreadCounts returns, per sender id, how many unread messages are waiting
// for recipientID across all conversations. Reads the counter index, so the
// cost is one key per partner regardless of log size.
func (m *MessageRepository) UnreadCounts(recipientID string) (map[string]int, error) {
	counts := make(map[string]int)
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("unread:" + recipientID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			sender := string(item.Key()[len(prefix):])
			err := item.Value(func(value []byte) error {
				count, parseErr := strconv.Atoi(string(value))
				if parseErr != nil {
					return parseErr
				}
				if count > 0 {
					counts[sender] = count
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return counts, nil
}

// Close releases the leased sequence ranges so restarts waste as few
// positions as possible. Gaps are harmless, order is what matters.
func (m *MessageRepository) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for room, seq := range m.seqs {
		if err := seq.Release(); err != nil {
			m.log.Warn("failed to release sequence", "room", string(room), "error", err)
		}
	}
	m.seqs = make(map[domain.RoomID]*badger.Sequence)
}

func (m *MessageRepository) sequenceLocked(room domain.RoomID) (*badger.Sequence, error) {
	if seq, ok := m.seqs[room]; ok {
		return seq, nil
	}
	seq, err := m.db.GetSequence([]byte("seq:"+string(room)), 64)
	if err != nil {
		return nil, err
	}
	m.seqs[room] = seq
	return seq, nil
}

func incrementUnread(txn *badger.Txn, recipientID, senderID string) error {
	key := unreadKey(recipientID, senderID)

	count := 0
	item, err := txn.Get(key)
	switch {
	case err == nil:
		err = item.Value(func(value []byte) error {
			parsed, parseErr := strconv.Atoi(string(value))
			if parseErr != nil {
				return parseErr
			}
			count = parsed
			return nil
		})
		if err != nil {
			return err
		}
	case stderrors.Is(err, badger.ErrKeyNotFound):
	default:
		return err
	}
	return txn.Set(key, []byte(strconv.Itoa(count+1)))
}

func unreadKey(recipientID, senderID string) []byte {
	return []byte("unread:" + recipientID + ":" + senderID)
}

func messageKey(room domain.RoomID, seq uint64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%020d", room, seq))
}

func roomPrefix(room domain.RoomID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", room))
}

func fromMessage(message domain.Message) DiskMessage {
	return DiskMessage{
		ID:          message.ID.String(),
		Room:        string(message.Room),
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Body:        message.Body,
		At:          message.CreatedAt,
		Read:        message.Read,
	}
}

func toMessage(value []byte) (domain.Message, error) {
	var disk DiskMessage
	if err := json.Unmarshal(value, &disk); err != nil {
		return domain.Message{}, err
	}
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:          parsedID,
		Room:        domain.RoomID(disk.Room),
		SenderID:    disk.SenderID,
		RecipientID: disk.RecipientID,
		Body:        disk.Body,
		CreatedAt:   disk.At,
		Read:        disk.Read,
	}, nil
}
