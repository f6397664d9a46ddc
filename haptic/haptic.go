// Package haptic renders tactile feedback as short decaying clicks on the
// default audio output. Intensity scales the click volume.
package haptic

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	sampleRate = 44100

	clickFreq   = 1200
	clickVolume = 0.5
	clickDecay  = 60

	// MinGap is the shortest interval between two rendered clicks. Pulses
	// arriving faster than this (a fast drag) are dropped.
	MinGap = 40 * time.Millisecond
)

var (
	clickSamples []int16
	clickOnce    sync.Once
)

func initClick() {
	clickSamples = generateTick(sampleRate, clickFreq, clickDuration, clickVolume, clickDecay)
}

// generateTick renders a mono decaying sine.
func generateTick(sampleRate int, freq float64, duration float64, volume float64, decay float64) []int16 {
	n := int(float64(sampleRate) * duration)
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

// scaled returns a copy of the click at the given intensity.
func scaled(intensity float64) []int16 {
	clickOnce.Do(initClick)
	out := make([]int16, len(clickSamples))
	for i, s := range clickSamples {
		out[i] = int16(float64(s) * intensity)
	}
	return out
}

// Throttle admits at most one event per gap.
type Throttle struct {
	clk  clock.Clock
	gap  time.Duration
	mu   sync.Mutex
	last time.Time
}

func NewThrottle(clk clock.Clock, gap time.Duration) *Throttle {
	if clk == nil {
		clk = clock.New()
	}
	return &Throttle{clk: clk, gap: gap}
}

func (t *Throttle) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clk.Now()
	if !t.last.IsZero() && now.Sub(t.last) < t.gap {
		return false
	}
	t.last = now
	return true
}

// Clicker implements transport haptics with audible clicks.
type Clicker struct {
	throttle *Throttle
	play     func([]int16)
	disabled bool
}

func New(clk clock.Clock) *Clicker {
	return &Clicker{throttle: NewThrottle(clk, MinGap), play: playClick}
}

// Disabled returns a Clicker that never sounds.
func Disabled() *Clicker {
	return &Clicker{disabled: true}
}

func (c *Clicker) Pulse() {
	c.PulseIntensity(1)
}

func (c *Clicker) PulseIntensity(intensity float64) {
	if c.disabled || !(intensity > 0) {
		return
	}
	if !c.throttle.Allow() {
		return
	}
	go c.play(scaled(min(intensity, 1)))
}

// Test plays one full-strength click synchronously.
func Test() error {
	return playClickSync(scaled(1))
}
