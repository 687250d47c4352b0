package ws

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/notegrove/notegrove/internal/auth"
	"github.com/notegrove/notegrove/pkg/logger/slogx"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades HTTP requests to realtime sessions. The handshake
// carries a bearer token in the query; a bad token terminates the
// connection before it ever becomes active.
type Handler struct {
	registry *Registry
	secret   []byte
}

func NewHandler(registry *Registry, secret []byte) *Handler {
	return &Handler{registry: registry, secret: secret}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	userID, err := auth.UserIDFromToken(req.URL.Query().Get("token"), h.secret)
	if err != nil {
		http.Error(w, "authentication error", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		slogx.Warn(ctx, "upgrade websocket", slogx.Err(err))
		return
	}

	// Clients may bring their own session id so they can tag HTTP
	// mutations with it for echo suppression.
	sessionID := req.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	wc := newWSConn(conn)
	h.registry.Add(sessionID, userID, wc)

	slogx.Info(ctx, "session connected",
		slogx.SessionID(sessionID),
		slogx.UserID(userID.String()),
	)

	go wc.writePump()
	h.readLoop(sessionID, wc)

	h.registry.Remove(sessionID)
	wc.close()

	slogx.Info(ctx, "session disconnected", slogx.SessionID(sessionID))
}

// readLoop handles client commands until the socket closes.
func (h *Handler) readLoop(sessionID string, wc *wsConn) {
	for {
		var msg struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}

		if err := wc.conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.Event != CommandSubscribe {
			continue
		}

		var sub subscribePayload
		if err := json.Unmarshal(msg.Data, &sub); err != nil {
			continue
		}

		h.registry.Subscribe(sessionID, sub.NoteID)
	}
}
