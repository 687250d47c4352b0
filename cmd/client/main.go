// A small event listener for poking at a running server: mints a dev
// token, opens the realtime socket, optionally subscribes to a note
// and prints every event it receives.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/notegrove/notegrove/internal/auth"
	"github.com/notegrove/notegrove/pkg/logger/slogx"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}

func run() error {
	addr := flag.String("addr", "127.0.0.1:8080", "server address")
	secret := flag.String("secret", "", "shared auth secret to mint a token with")
	user := flag.String("user", "", "user id, random when empty")
	note := flag.String("note", "", "note id to subscribe to")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := slogx.InitGlobal(os.Stdout, "info", true); err != nil {
		return fmt.Errorf("init logger: %v", err)
	}

	userID := uuid.New()
	if *user != "" {
		parsed, err := uuid.Parse(*user)
		if err != nil {
			return fmt.Errorf("parse user id: %v", err)
		}
		userID = parsed
	}

	token, err := auth.GenerateToken(userID, []byte(*secret), time.Hour)
	if err != nil {
		return fmt.Errorf("generate token: %v", err)
	}

	sessionID := uuid.NewString()
	u := url.URL{
		Scheme:   "ws",
		Host:     *addr,
		Path:     "/ws",
		RawQuery: url.Values{"token": {token}, "sessionId": {sessionID}}.Encode(),
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %v", u.String(), err)
	}
	defer conn.Close()

	slogx.Info(ctx, "connected",
		slogx.UserID(userID.String()),
		slogx.SessionID(sessionID),
	)

	if *note != "" {
		noteID, err := uuid.Parse(*note)
		if err != nil {
			return fmt.Errorf("parse note id: %v", err)
		}

		sub := map[string]any{
			"event": "note:subscribe",
			"data":  map[string]any{"noteId": noteID},
		}
		if err := conn.WriteJSON(sub); err != nil {
			return fmt.Errorf("subscribe: %v", err)
		}

		slogx.Info(ctx, "subscribed", slogx.NoteID(noteID.String()))
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg struct {
			Event string `json:"event"`
			Data  any    `json:"data"`
		}

		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %v", err)
		}

		slogx.Info(ctx, "event received",
			slog.String("event", msg.Event),
			slog.Any("data", msg.Data),
		)
	}
}
