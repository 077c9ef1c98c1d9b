package voice

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/neboloop/callbridge/internal/telephony"
)

// ingress reads telephony events, chunks inbound caller audio into frames
// and queues them for the sender. It returns nil on the stop event.
func (s *Session) ingress(ctx context.Context) error {
	acc := NewAccumulator(s.opts.Threshold)

	for {
		msgType, data, err := s.phone.conn.ReadMessage()
		if err != nil {
			return ioError(ctx, loopIngress, err)
		}
		if msgType != websocket.TextMessage {
			s.log.Debug("ignoring non-text telephony frame", "type", msgType)
			continue
		}

		ev, err := telephony.Decode(data)
		if err != nil {
			return &ProtocolError{Loop: loopIngress, Err: err}
		}

		switch ev.Event {
		case telephony.EventConnected:
			continue

		case telephony.EventStart:
			if err := s.start(ev.Start.StreamSID); err != nil {
				return &ProtocolError{Loop: loopIngress, Err: err}
			}

		case telephony.EventMedia:
			if !ev.Media.Inbound() {
				continue
			}
			audio, err := ev.Media.Audio()
			if err != nil {
				return &ProtocolError{Loop: loopIngress, Err: err}
			}
			s.stats.bytesIn.Add(int64(len(audio)))
			for _, frame := range acc.Write(audio) {
				select {
				case s.frames <- frame:
				case <-ctx.Done():
					return nil
				}
			}

		case telephony.EventStop:
			s.log.Info("stream stopped", "streamSid", s.StreamSID(), "pending_bytes", acc.Pending())
			s.closeConversation(ctx)
			return nil

		default:
			s.log.Debug("ignoring telephony event", "event", ev.Event)
		}
	}
}
