// Package ctxtr carries request-scoped principal data through context.
package ctxtr

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type ctxKey string

const (
	userIDKey    ctxKey = "user_id"
	sessionIDKey ctxKey = "session_id"
)

var ErrUserNotFound = errors.New("user not found")

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}

	return userID, nil
}

// WithSessionID stores the caller's origin session id, used only for
// self-echo suppression during fan-out.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionID returns the origin session id or "" when the caller did
// not send one (echo suppression disabled for that call).
func SessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDKey).(string)

	return sessionID
}
