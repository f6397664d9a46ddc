package transport

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hapticrec/loop"
)

func TestFlagsFor(t *testing.T) {
	tests := []struct {
		state  State
		want   Buttons
		record bool
	}{
		{Idle, Buttons{}, false},
		{Armed, Buttons{Play: true}, true},
		{Recording, Buttons{Record: true, Play: true}, true},
		{Paused, Buttons{Play: true}, true},
		{Stopped, Buttons{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			got := FlagsFor(tt.state)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.record, got.RecordEnabled())
			assert.Equal(t, tt.record, tt.state.Active())
		})
	}
	assert.True(t, Buttons{Stop: true}.RecordEnabled())
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{721, 1},
		{-1, 359},
		{-360, 0},
		{-1e-20, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Wrap(tt.in), 1e-9, "Wrap(%v)", tt.in)
	}
}

func TestDragIntensity(t *testing.T) {
	assert.Equal(t, 0.0, DragIntensity(0, 275))
	assert.InDelta(t, 0.5, DragIntensity(-137.5, 275), 1e-9)
	assert.Equal(t, 1.0, DragIntensity(10000, 275))
	assert.Equal(t, 0.0, DragIntensity(math.NaN(), 275))
}

func TestLevelMapping(t *testing.T) {
	assert.Equal(t, 0.0, Level(-80))
	assert.Equal(t, 1.0, Level(0))
	assert.InDelta(t, 0.5, Level(-40), 1e-12)
	assert.Equal(t, 0.0, Level(-160))
	assert.Equal(t, 1.0, Level(6))
}

func TestLitSegmentsMonotonic(t *testing.T) {
	prev := 0
	for i := 0; i <= 1000; i++ {
		lit := LitSegments(float64(i)/1000, DefaultSegments)
		assert.GreaterOrEqual(t, lit, prev, "level %v", float64(i)/1000)
		prev = lit
	}
	assert.Equal(t, 0, LitSegments(0, 20))
	assert.Equal(t, 1, LitSegments(0.01, 20))
	assert.Equal(t, 20, LitSegments(1, 20))
}

func TestMeterSegments(t *testing.T) {
	m := NewMeter(4)
	m.Set(0.3, 2)
	assert.Equal(t, []bool{true, true, false, false}, m.Segments(0))
	assert.Equal(t, []bool{true, true, true, true}, m.Segments(1))
	assert.Equal(t, []bool{false, false, false, false}, m.Segments(5))
	assert.Equal(t, DefaultSegments, NewMeter(0).Len())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatElapsed(0))
	assert.Equal(t, "00:01:05", FormatElapsed(65))
	assert.Equal(t, "10:00:01", FormatElapsed(36001))
	assert.Equal(t, "00:00:00", FormatElapsed(-3))
}

func TestTintFor(t *testing.T) {
	assert.Equal(t, TintRecording, TintFor(true, false))
	assert.Equal(t, TintNeutral, TintFor(false, true))
	assert.Equal(t, TintNeutral, TintFor(false, false))
}

func TestElapsedTimerIdempotent(t *testing.T) {
	sched := loop.NewManual()
	s := NewSession()
	sink := &recordSink{}
	e := NewElapsedTimer(s, sched, sink)

	e.Start()
	e.Start()
	assert.Equal(t, 1, sched.Active())
	sched.Advance(2 * time.Second)
	assert.Equal(t, "00:00:02", e.Text())

	e.Stop()
	e.Stop()
	assert.Equal(t, 0, sched.Active())
	assert.Equal(t, TintNeutral, sink.tint)

	e.Reset()
	assert.Equal(t, "00:00:00", sink.lastElapsed())
}

func TestSilenceMonitorHysteresis(t *testing.T) {
	m := newSilenceMonitor(100 * time.Millisecond)
	for i := 0; i < 79; i++ {
		assert.Equal(t, SilenceNone, m.Tick(false), "tick %d", i)
	}
	assert.Equal(t, SilenceWarn, m.Tick(false))

	// 15% signal is above the warn ratio but below the clear ratio.
	for i := 0; i < 80; i++ {
		assert.NotEqual(t, SilenceClear, m.Tick(i%20 < 3))
	}
	cleared := false
	for i := 0; i < 80 && !cleared; i++ {
		cleared = m.Tick(true) == SilenceClear
	}
	assert.True(t, cleared)
}

func TestNoWarnWithSignal(t *testing.T) {
	m := newSilenceMonitor(50 * time.Millisecond)
	for i := 0; i < 500; i++ {
		assert.NotEqual(t, SilenceWarn, m.Tick(i%5 == 0))
	}
}
