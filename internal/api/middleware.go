package api

import (
	"net/http"

	"github.com/notegrove/notegrove/internal/auth"
	"github.com/notegrove/notegrove/internal/ctxtr"
)

const sessionHeader = "X-Session-Id"

// authMiddleware resolves the bearer token into a user id. Mutating
// requests may additionally tag themselves with their websocket
// session id so their own fan-out echo is suppressed; the header is
// optional and an absent one simply disables suppression.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		userID, err := auth.UserIDFromToken(req.Header.Get("Authorization"), h.secret)
		if err != nil {
			respondError(w, req, ctxtr.ErrUserNotFound)
			return
		}

		ctx := ctxtr.WithUserID(req.Context(), userID)
		if sessionID := req.Header.Get(sessionHeader); sessionID != "" {
			ctx = ctxtr.WithSessionID(ctx, sessionID)
		}

		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
