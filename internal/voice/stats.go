package voice

import "sync/atomic"

// Stats counts what a session moved in each direction.
type Stats struct {
	BytesIn     int64 `json:"bytes_in"`
	FramesOut   int64 `json:"frames_out"`
	AudioOut    int64 `json:"audio_out"`
	BargeIns    int64 `json:"barge_ins"`
	ToolCalls   int64 `json:"tool_calls"`
	Transcripts int64 `json:"transcripts"`
}

type counters struct {
	bytesIn     atomic.Int64
	framesOut   atomic.Int64
	audioOut    atomic.Int64
	bargeIns    atomic.Int64
	toolCalls   atomic.Int64
	transcripts atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		BytesIn:     c.bytesIn.Load(),
		FramesOut:   c.framesOut.Load(),
		AudioOut:    c.audioOut.Load(),
		BargeIns:    c.bargeIns.Load(),
		ToolCalls:   c.toolCalls.Load(),
		Transcripts: c.transcripts.Load(),
	}
}
