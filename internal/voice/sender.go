package voice

import "context"

// send drains the frame queue to the agent, one frame per lock acquisition.
// Any write failure ends the session; there is no retry.
func (s *Session) send(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-s.frames:
			if err := s.agent.SendAudio(frame); err != nil {
				return ioError(ctx, loopSender, err)
			}
			s.stats.framesOut.Add(1)
		}
	}
}
