package voice

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/neboloop/callbridge/internal/telephony"
)

// agentLink is the agent-facing socket. Its write mutex is the frame lock:
// audio frames and function call responses share the wire and take turns,
// first come first served.
type agentLink struct {
	*link
}

func newAgentLink(conn Conn, writeWait time.Duration) *agentLink {
	return &agentLink{link: newLink(conn, writeWait)}
}

// SendAudio forwards one caller audio frame.
func (a *agentLink) SendAudio(frame []byte) error {
	return a.write(websocket.BinaryMessage, frame)
}

// SendControl writes a JSON document and holds the lock for pacing afterwards.
func (a *agentLink) SendControl(ctx context.Context, doc []byte, pacing time.Duration) error {
	return a.writeHold(ctx, websocket.TextMessage, doc, pacing)
}

// SendSettings writes the session settings document.
func (a *agentLink) SendSettings(doc []byte) error {
	return a.write(websocket.TextMessage, doc)
}

// phoneLink is the telephony-facing socket. Playback and clear events come
// from different goroutines and share its own write mutex.
type phoneLink struct {
	*link
}

func newPhoneLink(conn Conn, writeWait time.Duration) *phoneLink {
	return &phoneLink{link: newLink(conn, writeWait)}
}

// SendMedia plays agent audio to the caller.
func (p *phoneLink) SendMedia(streamSID string, audio []byte) error {
	msg, err := telephony.MediaEvent(streamSID, audio)
	if err != nil {
		return err
	}
	return p.write(websocket.TextMessage, msg)
}

// SendClear discards playback queued on the telephony side.
func (p *phoneLink) SendClear(streamSID string) error {
	msg, err := telephony.ClearEvent(streamSID)
	if err != nil {
		return err
	}
	return p.write(websocket.TextMessage, msg)
}
