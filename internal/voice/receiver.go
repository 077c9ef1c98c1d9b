package voice

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/neboloop/callbridge/internal/voiceagent"
)

// receive waits for the stream id, then relays agent audio to the caller and
// hands agent control documents to the dispatcher.
func (s *Session) receive(ctx context.Context) error {
	sid, err := s.sid.Wait(ctx)
	if err != nil {
		return nil
	}

	for {
		msgType, data, err := s.agent.conn.ReadMessage()
		if err != nil {
			return ioError(ctx, loopReceiver, err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			if err := s.phone.SendMedia(sid, data); err != nil {
				return ioError(ctx, loopReceiver, err)
			}
			s.stats.audioOut.Add(1)

		case websocket.TextMessage:
			msg, err := voiceagent.Decode(data)
			if err != nil {
				return &ProtocolError{Loop: loopReceiver, Err: err}
			}
			if err := s.dispatch(ctx, sid, msg); err != nil {
				return err
			}
		}
	}
}
