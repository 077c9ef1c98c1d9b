// Package sessions tracks live calls so the server can cancel and drain them on shutdown.
package sessions

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrDraining is returned by Register once Drain has been called.
var ErrDraining = errors.New("server is shutting down")

// Handle is what the tracker needs from a live call.
type Handle struct {
	Cancel    func()
	StreamSID func() string
}

// Info describes one live call.
type Info struct {
	ConnID    string    `json:"conn_id"`
	StreamSID string    `json:"stream_sid,omitempty"`
	Started   time.Time `json:"started"`
}

type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*trackedSession
	draining bool
	idle     chan struct{} // closed when sessions becomes empty; nil when nobody waits
	now      func() time.Time
}

type trackedSession struct {
	handle  Handle
	started time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[string]*trackedSession),
		now:      time.Now,
	}
}

// Register adds a call under connID. The returned func removes it and is safe
// to call more than once. After Drain it fails with ErrDraining.
func (t *Tracker) Register(connID string, h Handle) (unregister func(), err error) {
	entry := &trackedSession{handle: h, started: t.now()}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.draining {
		return nil, ErrDraining
	}
	t.sessions[connID] = entry

	return func() { t.unregister(connID, entry) }, nil
}

func (t *Tracker) unregister(connID string, entry *trackedSession) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessions[connID] != entry {
		return
	}
	delete(t.sessions, connID)
	if len(t.sessions) == 0 && t.idle != nil {
		close(t.idle)
		t.idle = nil
	}
}

func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Draining reports whether new calls are being refused.
func (t *Tracker) Draining() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draining
}

// List returns the live calls, oldest first.
func (t *Tracker) List() []Info {
	t.mu.Lock()
	out := make([]Info, 0, len(t.sessions))
	handles := make([]Handle, 0, len(t.sessions))
	for id, entry := range t.sessions {
		out = append(out, Info{ConnID: id, Started: entry.started})
		handles = append(handles, entry.handle)
	}
	t.mu.Unlock()

	for i, h := range handles {
		if h.StreamSID != nil {
			out[i].StreamSID = h.StreamSID()
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

// Drain stops accepting calls, cancels every live one and reports how many
// were signalled.
func (t *Tracker) Drain() (canceled int) {
	var cancels []func()
	t.mu.Lock()
	t.draining = true
	for _, entry := range t.sessions {
		if entry.handle.Cancel == nil {
			continue
		}
		cancels = append(cancels, entry.handle.Cancel)
	}
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
		canceled++
	}
	return canceled
}

// Wait blocks until no call is registered or ctx is done.
func (t *Tracker) Wait(ctx context.Context) bool {
	t.mu.Lock()
	if len(t.sessions) == 0 {
		t.mu.Unlock()
		return true
	}
	if t.idle == nil {
		t.idle = make(chan struct{})
	}
	idle := t.idle
	t.mu.Unlock()

	select {
	case <-idle:
		return true
	case <-ctx.Done():
		return false
	}
}
