package entity

import "github.com/google/uuid"

// Session is one live socket connection of an authenticated user.
// Sessions are ephemeral: created on connect, dropped on disconnect,
// never persisted.
type Session struct {
	ID               string
	UserID           uuid.UUID
	SubscribedNoteID *uuid.UUID
}

// SubscribedTo reports whether the session follows the note's detail
// view and should receive patch payloads for it.
func (s *Session) SubscribedTo(noteID uuid.UUID) bool {
	return s.SubscribedNoteID != nil && *s.SubscribedNoteID == noteID
}
