package slogx

import (
	"log/slog"
	"time"
)

// now is a seam for tests.
var now = time.Now

func Err(err error) slog.Attr {
	return slog.Any("err", err)
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func NoteID(id string) slog.Attr {
	return slog.String("note_id", id)
}

func GroupID(id string) slog.Attr {
	return slog.String("group_id", id)
}

func SessionID(id string) slog.Attr {
	return slog.String("session_id", id)
}
