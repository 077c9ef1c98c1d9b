package voice

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

// Loop names
const (
	loopIngress  = "ingress"
	loopSender   = "sender"
	loopReceiver = "receiver"
)

// TransportError means a socket broke under one of the session loops.
type TransportError struct {
	Loop string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Loop, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means a peer sent a frame the session could not understand.
type ProtocolError struct {
	Loop string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: protocol: %v", e.Loop, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ioError classifies a socket error for loop. A graceful close by the peer,
// or any error after the session was cancelled, ends the loop cleanly.
func ioError(ctx context.Context, loop string, err error) error {
	if err == nil || ctx.Err() != nil {
		return nil
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return &TransportError{Loop: loop, Err: err}
}
