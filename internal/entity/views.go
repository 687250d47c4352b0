package entity

import (
	"time"

	"github.com/google/uuid"
)

// NoteIndexView is the summary shape used in tree listings and in
// fan-out payloads for sessions not subscribed to the note.
type NoteIndexView struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Icon      string     `json:"icon"`
	IconColor string     `json:"iconColor"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	OwnerID   *uuid.UUID `json:"ownerId,omitempty"`
	GroupID   *uuid.UUID `json:"groupId,omitempty"`
}

// NoteView is the full detail shape including content.
type NoteView struct {
	NoteIndexView
	Content   string      `json:"content"`
	FileIDs   []uuid.UUID `json:"fileIds,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (n *Note) IndexView() NoteIndexView {
	return NoteIndexView{
		ID:        n.ID,
		Title:     n.Title,
		Icon:      n.Icon,
		IconColor: n.IconColor,
		ParentID:  n.ParentID,
		OwnerID:   n.OwnerID,
		GroupID:   n.GroupID,
	}
}

func (n *Note) View() NoteView {
	return NoteView{
		NoteIndexView: n.IndexView(),
		Content:       n.Content,
		FileIDs:       n.FileIDs,
		UpdatedAt:     n.UpdatedAt,
	}
}

// GroupIndexView is the group summary shaped for one recipient: each
// member sees their own role.
type GroupIndexView struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	MyRole Role      `json:"myRole"`
}

func (g *Group) IndexView(role Role) GroupIndexView {
	return GroupIndexView{ID: g.ID, Title: g.Title, MyRole: role}
}

// FileIndexView is the attachment summary used in file events.
type FileIndexView struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"fileName"`
	MimeType string    `json:"mimeType"`
	Size     int64     `json:"size"`
}

func (f *File) IndexView() FileIndexView {
	return FileIndexView{ID: f.ID, FileName: f.FileName, MimeType: f.MimeType, Size: f.Size}
}
