package entity

import "github.com/google/uuid"

// Role is a group membership privilege level.
type Role int

const (
	RoleAdmin  Role = 0
	RoleEditor Role = 1
	RoleReader Role = 2
)

// Membership is one user-to-group relation. Role data lives on the
// user, not on the group.
type Membership struct {
	GroupID uuid.UUID
	Role    Role
}

type User struct {
	ID       uuid.UUID
	Email    string
	UserName string
	Groups   []Membership
}

// GroupIDs lists the groups the user belongs to.
func (u *User) GroupIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.Groups))
	for _, m := range u.Groups {
		ids = append(ids, m.GroupID)
	}

	return ids
}

// RoleIn returns the user's role in the group, if any.
func (u *User) RoleIn(groupID uuid.UUID) (Role, bool) {
	for _, m := range u.Groups {
		if m.GroupID == groupID {
			return m.Role, true
		}
	}

	return 0, false
}
