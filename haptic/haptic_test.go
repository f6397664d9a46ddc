package haptic

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestThrottle(t *testing.T) {
	mock := clock.NewMock()
	th := NewThrottle(mock, MinGap)

	assert.True(t, th.Allow())
	assert.False(t, th.Allow())
	mock.Add(MinGap - time.Millisecond)
	assert.False(t, th.Allow())
	mock.Add(time.Millisecond)
	assert.True(t, th.Allow())
}

func TestClickerScalesAndThrottles(t *testing.T) {
	mock := clock.NewMock()
	c := New(mock)

	var mu sync.Mutex
	var peaks []int16
	var wg sync.WaitGroup
	c.play = func(s []int16) {
		defer wg.Done()
		var peak int16
		for _, v := range s {
			peak = max(peak, v)
		}
		mu.Lock()
		peaks = append(peaks, peak)
		mu.Unlock()
	}

	wg.Add(1)
	c.Pulse()
	c.PulseIntensity(0.5) // throttled
	mock.Add(MinGap)
	wg.Add(1)
	c.PulseIntensity(0.25)
	mock.Add(MinGap)
	c.PulseIntensity(0) // silent
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, peaks, 2)
	hi, lo := max(peaks[0], peaks[1]), min(peaks[0], peaks[1])
	assert.InDelta(t, 0.25, float64(lo)/float64(hi), 0.01)
}

func TestDisabledClickerIsSilent(t *testing.T) {
	c := Disabled()
	c.Pulse()
	c.PulseIntensity(1)
}

func TestGenerateTickDecays(t *testing.T) {
	s := generateTick(sampleRate, clickFreq, 0.05, clickVolume, clickDecay)
	assert.InDelta(t, 2205, len(s), 1)

	peak := func(part []int16) (p int16) {
		for _, v := range part {
			p = max(p, v)
		}
		return
	}
	third := len(s) / 3
	assert.Greater(t, peak(s[:third]), peak(s[2*third:]))
}
