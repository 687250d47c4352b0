package entity

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID        uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InviteCode is a pending, time-limited join code for a group. Admin
// roles are never granted through codes.
type InviteCode struct {
	Code       string
	GroupID    uuid.UUID
	AuthorID   uuid.UUID
	Role       Role
	ExpireDate time.Time
}

// Expired reports whether the code is past its expiry at the given
// moment.
func (c *InviteCode) Expired(at time.Time) bool {
	return !c.ExpireDate.After(at)
}

// AdministeredBy reports whether the user may administer the group
// (rename, delete, issue invites). Only role 0 qualifies.
func (g *Group) AdministeredBy(u *User) bool {
	role, ok := u.RoleIn(g.ID)

	return ok && role == RoleAdmin
}
