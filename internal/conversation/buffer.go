// Package conversation keeps the per-call transcript while a call is live.
package conversation

import (
	"errors"
	"strings"
	"sync"
)

// ErrStreamInUse is returned when a live buffer already exists for a stream id.
var ErrStreamInUse = errors.New("stream id already has a live conversation")

// Roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Buffer holds one call's utterances, in arrival order per role.
type Buffer struct {
	mu        sync.Mutex
	user      []string
	assistant []string
	closed    bool
}

// Append records text for role. Text that is empty after trimming, an unknown
// role, or a buffer that has been destroyed makes it a no-op; the return value
// reports whether anything was stored.
func (b *Buffer) Append(role, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	switch role {
	case RoleUser:
		b.user = append(b.user, text)
	case RoleAssistant:
		b.assistant = append(b.assistant, text)
	default:
		return false
	}
	return true
}

// Snapshot returns copies of both sequences.
func (b *Buffer) Snapshot() (user, assistant []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.user...), append([]string(nil), b.assistant...)
}

// Len returns the number of stored utterances.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.user) + len(b.assistant)
}

func (b *Buffer) close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// Registry maps live stream ids to their buffers.
type Registry struct {
	mu      sync.Mutex
	buffers map[string]*Buffer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{buffers: make(map[string]*Buffer)}
}

// Create makes an empty buffer for id. A buffer is never shared: an id that
// is still live fails with ErrStreamInUse.
func (r *Registry) Create(id string) (*Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buffers[id]; ok {
		return nil, ErrStreamInUse
	}
	b := &Buffer{}
	r.buffers[id] = b
	return b, nil
}

// Get looks up a live buffer.
func (r *Registry) Get(id string) (*Buffer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buffers[id]
	return b, ok
}

// Destroy removes the buffer for id and returns it. Later appends through a
// retained pointer are ignored.
func (r *Registry) Destroy(id string) (*Buffer, bool) {
	r.mu.Lock()
	b, ok := r.buffers[id]
	delete(r.buffers, id)
	r.mu.Unlock()
	if ok {
		b.close()
	}
	return b, ok
}

// Len returns the number of live buffers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}
