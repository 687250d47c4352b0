package entity

import (
	"time"

	"github.com/google/uuid"
)

// File is a reference to an attachment stored by the external file
// service. The engine only tracks the linkage and removes rows when
// their note goes away.
type File struct {
	ID        uuid.UUID
	NoteID    uuid.UUID
	FileName  string
	MimeType  string
	Size      int64
	CreatedAt time.Time
}
