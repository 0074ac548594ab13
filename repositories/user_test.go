package repositories

import (
	"testing"

	"campus-link/domain"
	"campus-link/errors"

	"github.com/stretchr/testify/require"
)

func Test_SaveUser_Then_GetUser(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	user := domain.User{
		ID:         "alice",
		Name:       "Alice Carter",
		Role:       domain.RoleStudent,
		Department: "Computer Science",
		Active:     true,
	}
	req.NoError(repository.SaveUser(user))

	fetched, err := repository.GetUser("alice")
	req.NoError(err)
	req.Equal(user, fetched)
}

func Test_GetUser_Unknown_Id(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	_, err := repository.GetUser("ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_SaveUser_Overwrites_Directory_Snapshot(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	user := domain.User{ID: "alice", Name: "Alice Carter", Role: domain.RoleStudent, Active: true}
	req.NoError(repository.SaveUser(user))

	// When the directory flips the active flag
	user.Active = false
	req.NoError(repository.SaveUser(user))

	fetched, err := repository.GetUser("alice")
	req.NoError(err)
	req.False(fetched.Active)
}

func Test_ListUsers(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	req.NoError(repository.SaveUser(domain.User{ID: "alice", Name: "Alice", Role: domain.RoleStudent, Active: true}))
	req.NoError(repository.SaveUser(domain.User{ID: "carla", Name: "Carla", Role: domain.RoleCoordinator, Active: true}))

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Len(users, 2)
}
