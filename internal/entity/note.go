package entity

import (
	"time"

	"github.com/google/uuid"
)

// Note is a versioned document in the note forest. A note belongs to
// either a single owner or a group; a note with neither is a valid but
// degenerate orphan that nobody can edit.
type Note struct {
	ID        uuid.UUID
	Title     string
	Icon      string
	IconColor string
	Content   string
	ParentID  *uuid.UUID
	OwnerID   *uuid.UUID
	GroupID   *uuid.UUID
	FileIDs   []uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VisibleTo reports whether the user may see the note: the user owns
// it, or it belongs to one of the user's groups.
func (n *Note) VisibleTo(u *User) bool {
	if n.OwnerID != nil && *n.OwnerID == u.ID {
		return true
	}

	if n.GroupID != nil {
		_, ok := u.RoleIn(*n.GroupID)
		return ok
	}

	return false
}

// EditableBy reports whether the user may mutate the note. Group notes
// require an admin or editor role, owned notes the owner. An orphan
// note is not editable by anyone.
func (n *Note) EditableBy(u *User) bool {
	if n.GroupID != nil {
		role, ok := u.RoleIn(*n.GroupID)
		return ok && (role == RoleAdmin || role == RoleEditor)
	}

	if n.OwnerID != nil {
		return *n.OwnerID == u.ID
	}

	return false
}
