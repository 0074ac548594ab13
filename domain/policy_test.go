package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanSend_Full_Matrix(t *testing.T) {
	req := require.New(t)

	allowed := map[[2]Role]bool{
		{RoleStudent, RoleStudent}:         true,
		{RoleStudent, RoleAlumni}:          true,
		{RoleStudent, RoleCoordinator}:     true,
		{RoleStudent, RoleAdmin}:           false,
		{RoleAlumni, RoleStudent}:          true,
		{RoleAlumni, RoleAlumni}:           true,
		{RoleAlumni, RoleCoordinator}:      true,
		{RoleAlumni, RoleAdmin}:            false,
		{RoleCoordinator, RoleStudent}:     true,
		{RoleCoordinator, RoleAlumni}:      true,
		{RoleCoordinator, RoleCoordinator}: false,
		{RoleCoordinator, RoleAdmin}:       true,
		{RoleAdmin, RoleStudent}:           false,
		{RoleAdmin, RoleAlumni}:            false,
		{RoleAdmin, RoleCoordinator}:       true,
		{RoleAdmin, RoleAdmin}:             false,
	}

	for pair, want := range allowed {
		req.Equal(want, CanSend(pair[0], pair[1]),
			"CanSend(%s, %s)", pair[0], pair[1])
	}
}

func TestCanSend_Unknown_Role(t *testing.T) {
	req := require.New(t)
	req.False(CanSend(Role("guest"), RoleStudent))
	req.False(CanSend(RoleStudent, Role("guest")))
}

func TestCanSend_Is_Directional(t *testing.T) {
	req := require.New(t)

	// Student and coordinator can message each other
	req.True(CanSend(RoleStudent, RoleCoordinator))
	req.True(CanSend(RoleCoordinator, RoleStudent))

	// Admin and coordinator can, coordinator to coordinator cannot
	req.True(CanSend(RoleAdmin, RoleCoordinator))
	req.False(CanSend(RoleCoordinator, RoleCoordinator))

	// Admin and student cannot message each other in either direction
	req.False(CanSend(RoleAdmin, RoleStudent))
	req.False(CanSend(RoleStudent, RoleAdmin))
}

func TestCanChat_Is_Broader_Than_CanSend(t *testing.T) {
	req := require.New(t)

	// Coordinator cannot initiate towards a coordinator, and neither can the
	// reverse direction, so there is no shared history access either.
	req.False(CanChat(RoleCoordinator, RoleCoordinator))

	// One allowed direction is enough for history access.
	req.True(CanChat(RoleAdmin, RoleCoordinator))
	req.True(CanChat(RoleCoordinator, RoleAdmin))

	// No direction allowed at all.
	req.False(CanChat(RoleAdmin, RoleStudent))
	req.False(CanChat(RoleAdmin, RoleAlumni))
}

func TestParseRole(t *testing.T) {
	req := require.New(t)

	role, ok := ParseRole("coordinator")
	req.True(ok)
	req.Equal(RoleCoordinator, role)

	_, ok = ParseRole("superuser")
	req.False(ok)
}
