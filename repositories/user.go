//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"campus-link/domain"
	"campus-link/errors"

	"github.com/dgraph-io/badger/v4"
)

// IUserRepository is the local snapshot of the campus directory: id, name,
// role, department and the active flag. The surrounding portal owns the data;
// this subsystem only reads it (cmd/seed writes it for development).
type IUserRepository interface {
	SaveUser(user domain.User) error
	GetUser(id string) (domain.User, error)
	ListUsers() ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

type diskUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Active     bool   `json:"active"`
}

func (u *UserRepository) SaveUser(user domain.User) error {
	bytes, err := json.Marshal(diskUser{
		ID:         user.ID,
		Name:       user.Name,
		Role:       string(user.Role),
		Department: user.Department,
		Active:     user.Active,
	})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), bytes)
	})
}

func (u *UserRepository) GetUser(id string) (domain.User, error) {
	var disk diskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return toUser(disk), nil
}

func (u *UserRepository) ListUsers() ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var disk diskUser
				if err := json.Unmarshal(val, &disk); err != nil {
					return err
				}
				users = append(users, toUser(disk))
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
	return users, nil
}

func userKey(id string) []byte {
	return []byte("user:" + id)
}

func toUser(disk diskUser) domain.User {
	role, _ := domain.ParseRole(disk.Role)
	return domain.User{
		ID:         disk.ID,
		Name:       disk.Name,
		Role:       role,
		Department: disk.Department,
		Active:     disk.Active,
	}
}
