package voice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendezvousFirstPublishWins(t *testing.T) {
	r := newRendezvous()
	_, ok := r.Value()
	assert.False(t, ok)

	assert.True(t, r.Publish("CA1"))
	assert.False(t, r.Publish("CA2"))

	v, ok := r.Value()
	assert.True(t, ok)
	assert.Equal(t, "CA1", v)
}

func TestRendezvousWaitUnblocks(t *testing.T) {
	r := newRendezvous()

	var wg sync.WaitGroup
	got := make([]string, 3)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := r.Wait(context.Background())
			assert.NoError(t, err)
			got[i] = v
		}()
	}
	time.Sleep(10 * time.Millisecond)
	r.Publish("CA77")
	wg.Wait()
	assert.Equal(t, []string{"CA77", "CA77", "CA77"}, got)
}

func TestRendezvousWaitCancelled(t *testing.T) {
	r := newRendezvous()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
