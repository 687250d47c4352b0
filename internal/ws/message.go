package ws

import "github.com/google/uuid"

// Server-to-client events.
const (
	EventNoteUpdated  = "note:updated"
	EventNoteRemoved  = "note:removed"
	EventFileUpdated  = "note:fileUpdated"
	EventFileRemoved  = "note:fileRemoved"
	EventGroupUpdated = "group:updated"
	EventGroupRemoved = "group:removed"
)

// Client-to-server commands.
const CommandSubscribe = "note:subscribe"

// Message is the wire envelope in both directions.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type subscribePayload struct {
	NoteID uuid.UUID `json:"noteId"`
}
