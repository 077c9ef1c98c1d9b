package voice

import (
	"context"
	"sync"
)

// rendezvous hands the stream id from the ingress loop to the receiver once.
type rendezvous struct {
	once  sync.Once
	ready chan struct{}
	value string
}

func newRendezvous() *rendezvous {
	return &rendezvous{ready: make(chan struct{})}
}

// Publish stores id. Only the first call has any effect; it reports whether this call won.
func (r *rendezvous) Publish(id string) bool {
	published := false
	r.once.Do(func() {
		r.value = id
		close(r.ready)
		published = true
	})
	return published
}

// Wait blocks until an id is published or ctx is done.
func (r *rendezvous) Wait(ctx context.Context) (string, error) {
	select {
	case <-r.ready:
		return r.value, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Value returns the id if it has been published.
func (r *rendezvous) Value() (string, bool) {
	select {
	case <-r.ready:
		return r.value, true
	default:
		return "", false
	}
}
