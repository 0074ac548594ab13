// Package domain contains core concepts of the messaging system.
// This file defines User identities as published by the campus directory.
// No runtime, network, or UI logic should be added here.
package domain

// Role is the directory role attached to a user for the lifetime of a connection.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleStudent     Role = "student"
	RoleAlumni      Role = "alumni"
)

// ParseRole maps a raw directory string to a known Role.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleCoordinator, RoleStudent, RoleAlumni:
		return Role(raw), true
	default:
		return "", false
	}
}

// User is the read-only identity resolved from the campus directory.
type User struct {
	ID         string `validate:"required"`
	Name       string `validate:"required"`
	Role       Role   `validate:"required,oneof=admin coordinator student alumni"`
	Department string
	Active     bool
}
