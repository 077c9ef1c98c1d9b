package sessions

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRegister(t *testing.T, tr *Tracker, id string, h Handle) func() {
	t.Helper()
	unregister, err := tr.Register(id, h)
	require.NoError(t, err)
	return unregister
}

func TestDrainAndWait(t *testing.T) {
	tr := NewTracker()
	var cancelled atomic.Int32

	var unregisters []func()
	for _, id := range []string{"a", "b", "c"} {
		unregisters = append(unregisters, mustRegister(t, tr, id, Handle{Cancel: func() { cancelled.Add(1) }}))
	}
	require.Equal(t, 3, tr.Count())

	assert.Equal(t, 3, tr.Drain())
	assert.Equal(t, int32(3), cancelled.Load())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, tr.Wait(ctx), "calls have not unregistered yet")

	for _, u := range unregisters {
		u()
		u()
	}
	assert.True(t, tr.Wait(context.Background()))
	assert.Equal(t, 0, tr.Count())
}

func TestRegisterRefusedWhileDraining(t *testing.T) {
	tr := NewTracker()
	unregister := mustRegister(t, tr, "live", Handle{})
	assert.False(t, tr.Draining())

	assert.Equal(t, 0, tr.Drain())
	assert.True(t, tr.Draining())

	late, err := tr.Register("late", Handle{Cancel: func() { t.Error("refused call must not be tracked") }})
	assert.ErrorIs(t, err, ErrDraining)
	assert.Nil(t, late)
	assert.Equal(t, 1, tr.Count())

	done := make(chan bool, 1)
	go func() { done <- tr.Wait(context.Background()) }()
	unregister()
	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the last call unregistered")
	}
}

func TestWaitWithNothingRegistered(t *testing.T) {
	assert.True(t, NewTracker().Wait(context.Background()))
}

func TestReRegisterReplaces(t *testing.T) {
	tr := NewTracker()
	first := mustRegister(t, tr, "conn", Handle{})
	second := mustRegister(t, tr, "conn", Handle{})
	assert.Equal(t, 1, tr.Count())

	first()
	assert.Equal(t, 1, tr.Count(), "stale unregister must not remove the replacement")
	second()
	assert.True(t, tr.Wait(context.Background()))
}

func TestList(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	tr.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }

	mustRegister(t, tr, "second", Handle{StreamSID: func() string { return "CA2" }})
	mustRegister(t, tr, "third", Handle{})
	tr.now = func() time.Time { return base }
	mustRegister(t, tr, "first", Handle{StreamSID: func() string { return "CA1" }})

	list := tr.List()
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].ConnID)
	assert.Equal(t, "CA1", list[0].StreamSID)
	assert.Equal(t, "CA2", list[1].StreamSID)
	assert.Equal(t, "", list[2].StreamSID)
}
