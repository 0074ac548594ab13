package domain

// CanSend reports whether a sender role may initiate a message to a recipient role.
// The table is directional: two users may be able to message each other, one-way,
// or neither way.
func CanSend(sender, recipient Role) bool {
	switch sender {
	case RoleStudent, RoleAlumni:
		return recipient == RoleStudent || recipient == RoleAlumni || recipient == RoleCoordinator
	case RoleCoordinator:
		return recipient == RoleStudent || recipient == RoleAlumni || recipient == RoleAdmin
	case RoleAdmin:
		return recipient == RoleCoordinator
	default:
		return false
	}
}

// CanChat reports whether two roles may share a conversation at all.
// Either party being allowed to initiate grants read access to the shared
// history, so this is deliberately broader than CanSend.
func CanChat(a, b Role) bool {
	return CanSend(a, b) || CanSend(b, a)
}
