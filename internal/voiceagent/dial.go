package voiceagent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Dialer opens agent connections.
type Dialer struct {
	URL              string
	HandshakeTimeout time.Duration
}

// Dial connects to the agent service. The API key is presented as the second
// value of the "token" websocket subprotocol.
func (d Dialer) Dial(ctx context.Context, apiKey string) (*websocket.Conn, error) {
	if apiKey == "" {
		return nil, errors.New("voiceagent: empty API key")
	}
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: d.HandshakeTimeout,
		Subprotocols:     []string{"token", apiKey},
	}

	conn, resp, err := dialer.DialContext(ctx, d.URL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("voiceagent: dial %s: %w (status %d)", d.URL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("voiceagent: dial %s: %w", d.URL, err)
	}
	return conn, nil
}
