package ws

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

var errSessionClosed = errors.New("session closed")

// wsConn adapts a gorilla connection to the Conn interface. Writes go
// through a buffered channel drained by a single pump goroutine, the
// only writer gorilla allows. A full buffer drops the event rather
// than blocking the fan-out.
type wsConn struct {
	conn *websocket.Conn
	out  chan Message
	done chan struct{}
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn: conn,
		out:  make(chan Message, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	select {
	case <-c.done:
		return errSessionClosed
	case c.out <- msg:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// writePump serializes queued messages onto the socket until the
// connection is torn down.
func (c *wsConn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func (c *wsConn) close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.conn.Close()
}
