package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T, clk clock.Clock) *Loop {
	t.Helper()
	l := New(clk)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		l.Close()
	})
	return l
}

func TestLoopRunsPostedInOrder(t *testing.T) {
	l := startLoop(t, clock.NewMock())

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.True(t, l.Call(func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopEveryWithMockClock(t *testing.T) {
	mock := clock.NewMock()
	l := startLoop(t, mock)

	var ticks atomic.Int32
	cancel := l.Every(10*time.Millisecond, func() { ticks.Add(1) })

	for i := 0; i < 3; i++ {
		mock.Add(10 * time.Millisecond)
		want := int32(i + 1)
		require.Eventually(t, func() bool { return ticks.Load() == want },
			time.Second, time.Millisecond)
	}

	cancel()
	cancel()
	mock.Add(50 * time.Millisecond)
	l.Call(func() {})
	assert.Equal(t, int32(3), ticks.Load())
}

func TestLoopCancelDropsQueuedTick(t *testing.T) {
	mock := clock.NewMock()
	l := New(mock)
	defer l.Close()

	var ran atomic.Bool
	cancel := l.Every(10*time.Millisecond, func() { ran.Store(true) })

	// Loop not running yet, so the tick stays queued.
	mock.Add(10 * time.Millisecond)
	require.Eventually(t, func() bool { return len(l.tasks) == 1 }, time.Second, time.Millisecond)
	cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go l.Run(ctx)
	require.True(t, l.Call(func() {}))
	assert.False(t, ran.Load())
}

func TestLoopPostAfterClose(t *testing.T) {
	l := New(nil)
	l.Close()
	assert.False(t, l.Post(func() {}))
	assert.False(t, l.Call(func() {}))
}

func TestLoopRunReturnsContextError(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
	assert.False(t, l.Post(func() {}))
}

func TestManualAdvanceOrdersTimers(t *testing.T) {
	m := NewManual()
	var got []string
	m.Every(10*time.Millisecond, func() { got = append(got, "fast") })
	m.Every(25*time.Millisecond, func() { got = append(got, "slow") })

	m.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"fast", "fast", "slow", "fast", "fast", "fast", "slow"}, got)
	assert.Equal(t, 50*time.Millisecond, m.Now())
}

func TestManualCancelInsideTick(t *testing.T) {
	m := NewManual()
	n := 0
	var cancel func()
	cancel = m.Every(time.Second, func() {
		n++
		if n == 2 {
			cancel()
		}
	})
	m.Advance(10 * time.Second)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, m.Active())
}

func TestManualPostFromGoroutine(t *testing.T) {
	m := NewManual()
	done := false
	go m.Post(func() { done = true })
	require.True(t, m.Await(time.Second))
	assert.True(t, done)
	assert.False(t, m.Await(10*time.Millisecond))
}

func TestManualTimerRegisteredDuringAdvance(t *testing.T) {
	m := NewManual()
	var inner int
	m.Post(func() {
		m.Every(time.Second, func() { inner++ })
	})
	m.Advance(3 * time.Second)
	assert.Equal(t, 3, inner)
}
