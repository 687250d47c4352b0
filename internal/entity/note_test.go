package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func groupNote(groupID uuid.UUID) *Note {
	return &Note{ID: uuid.New(), Title: "n", GroupID: &groupID}
}

func TestNoteEditableBy_GroupRoles(t *testing.T) {
	groupID := uuid.New()
	note := groupNote(groupID)

	tests := []struct {
		name string
		user *User
		want bool
	}{
		{
			name: "admin",
			user: &User{ID: uuid.New(), Groups: []Membership{{GroupID: groupID, Role: RoleAdmin}}},
			want: true,
		},
		{
			name: "editor",
			user: &User{ID: uuid.New(), Groups: []Membership{{GroupID: groupID, Role: RoleEditor}}},
			want: true,
		},
		{
			name: "reader",
			user: &User{ID: uuid.New(), Groups: []Membership{{GroupID: groupID, Role: RoleReader}}},
			want: false,
		},
		{
			name: "non-member",
			user: &User{ID: uuid.New()},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, note.EditableBy(tt.user))
		})
	}
}

func TestNoteEditableBy_Owner(t *testing.T) {
	owner := &User{ID: uuid.New()}
	stranger := &User{ID: uuid.New()}
	note := &Note{ID: uuid.New(), OwnerID: &owner.ID}

	assert.True(t, note.EditableBy(owner))
	assert.False(t, note.EditableBy(stranger))
}

func TestNoteEditableBy_Orphan(t *testing.T) {
	note := &Note{ID: uuid.New()}
	user := &User{ID: uuid.New()}

	assert.False(t, note.EditableBy(user))
}

func TestNoteVisibleTo(t *testing.T) {
	groupID := uuid.New()
	owner := &User{ID: uuid.New()}
	member := &User{ID: uuid.New(), Groups: []Membership{{GroupID: groupID, Role: RoleReader}}}
	stranger := &User{ID: uuid.New()}

	owned := &Note{ID: uuid.New(), OwnerID: &owner.ID}
	grouped := groupNote(groupID)

	assert.True(t, owned.VisibleTo(owner))
	assert.False(t, owned.VisibleTo(stranger))
	assert.True(t, grouped.VisibleTo(member))
	assert.False(t, grouped.VisibleTo(stranger))
}

func TestGroupAdministeredBy(t *testing.T) {
	group := &Group{ID: uuid.New(), Title: "team"}

	admin := &User{ID: uuid.New(), Groups: []Membership{{GroupID: group.ID, Role: RoleAdmin}}}
	editor := &User{ID: uuid.New(), Groups: []Membership{{GroupID: group.ID, Role: RoleEditor}}}
	outsider := &User{ID: uuid.New()}

	assert.True(t, group.AdministeredBy(admin))
	assert.False(t, group.AdministeredBy(editor))
	assert.False(t, group.AdministeredBy(outsider))
}
