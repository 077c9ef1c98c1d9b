package voice

// Accumulator chunks inbound audio into fixed-size frames. A remainder
// shorter than the threshold is kept for the next Write and never emitted.
type Accumulator struct {
	threshold int
	buf       []byte
}

// NewAccumulator creates an accumulator emitting frames of threshold bytes.
func NewAccumulator(threshold int) *Accumulator {
	if threshold <= 0 {
		panic("voice: accumulator threshold must be positive")
	}
	return &Accumulator{threshold: threshold, buf: make([]byte, 0, 2*threshold)}
}

// Write appends p and returns every complete frame now available, oldest first.
// Returned frames do not alias the accumulator's storage.
func (a *Accumulator) Write(p []byte) [][]byte {
	a.buf = append(a.buf, p...)
	if len(a.buf) < a.threshold {
		return nil
	}

	n := len(a.buf) / a.threshold
	frames := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		frame := make([]byte, a.threshold)
		copy(frame, a.buf[i*a.threshold:])
		frames = append(frames, frame)
	}
	rest := copy(a.buf, a.buf[n*a.threshold:])
	a.buf = a.buf[:rest]
	return frames
}

// Pending returns the number of buffered bytes not yet emitted.
func (a *Accumulator) Pending() int {
	return len(a.buf)
}
