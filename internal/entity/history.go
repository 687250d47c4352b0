package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/notegrove/notegrove/pkg/diffx"
)

// FieldChange is one tracked field's diff inside a history entry.
type FieldChange struct {
	Field string         `json:"field"`
	Diff  []diffx.Change `json:"diff"`
}

// HistoryEntry is an immutable record of one accepted save. Entries
// with no changes are never written.
type HistoryEntry struct {
	ID        uuid.UUID
	NoteID    uuid.UUID
	AuthorID  uuid.UUID
	Changes   []FieldChange
	CreatedAt time.Time
}

// ChangeFor returns the entry's diff for one field, if present.
func (e *HistoryEntry) ChangeFor(field string) ([]diffx.Change, bool) {
	for _, c := range e.Changes {
		if c.Field == field {
			return c.Diff, true
		}
	}

	return nil, false
}

// HistoryFieldView juxtaposes one field's text around an entry.
type HistoryFieldView struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// HistoryDetail is the display view of a single history entry.
type HistoryDetail struct {
	AuthorID  uuid.UUID          `json:"authorId"`
	CreatedAt time.Time          `json:"createdAt"`
	Fields    []HistoryFieldView `json:"fields"`
}

// DetailAt builds the before/after view for the entry at index i.
//
// "Before" is the text each field ended up with after entry i-1, or
// empty when i == 0 or entry i-1 did not touch the field.
// This juxtaposes adjacent entries only; it is a display convenience,
// not a point-in-time reconstruction, and may differ from the actual
// historical value when other fields changed in between.
func DetailAt(entries []HistoryEntry, i int) (HistoryDetail, bool) {
	if i < 0 || i >= len(entries) {
		return HistoryDetail{}, false
	}

	entry := entries[i]
	detail := HistoryDetail{
		AuthorID:  entry.AuthorID,
		CreatedAt: entry.CreatedAt,
	}

	for _, change := range entry.Changes {
		view := HistoryFieldView{
			Field: change.Field,
			After: diffx.NewText(change.Diff),
		}

		// Only the directly preceding entry is consulted. A field the
		// previous entry did not touch shows an empty "before" even
		// when an older entry holds its real prior value.
		if i > 0 {
			if prev, ok := entries[i-1].ChangeFor(change.Field); ok {
				view.Before = diffx.NewText(prev)
			}
		}

		detail.Fields = append(detail.Fields, view)
	}

	return detail, true
}
