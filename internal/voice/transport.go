package voice

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn a session uses. Reads happen on a
// single goroutine; writes go through a link, which serializes them.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// link owns the write side of one socket. Every write holds writeMu for the
// whole message, so frames from different goroutines never interleave.
type link struct {
	conn      Conn
	writeMu   sync.Mutex
	writeWait time.Duration
	closeOnce sync.Once
}

func newLink(conn Conn, writeWait time.Duration) *link {
	return &link{conn: conn, writeWait: writeWait}
}

func (l *link) write(messageType int, data []byte) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.writeLocked(messageType, data)
}

// writeHold writes data and keeps the lock for hold afterwards, so the peer
// gets a quiet gap before the next frame. The lock is released on every path.
func (l *link) writeHold(ctx context.Context, messageType int, data []byte, hold time.Duration) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if err := l.writeLocked(messageType, data); err != nil {
		return err
	}
	if hold <= 0 {
		return nil
	}
	t := time.NewTimer(hold)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
	return nil
}

func (l *link) writeLocked(messageType int, data []byte) error {
	if l.writeWait > 0 {
		l.conn.SetWriteDeadline(time.Now().Add(l.writeWait))
	}
	return l.conn.WriteMessage(messageType, data)
}

// Close sends a close frame (best effort) and closes the socket. WriteControl
// may run concurrently with a blocked writer, so this never waits on writeMu.
func (l *link) Close(code int, reason string) error {
	var err error
	l.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(code, reason)
		_ = l.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = l.conn.Close()
	})
	return err
}
