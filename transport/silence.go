package transport

import "time"

const (
	silenceWarnWindow = 8 * time.Second
	signalMinRatio    = 0.10
	signalClearRatio  = 0.25 // higher threshold to clear warning (hysteresis)

	// A channel at or below this level counts as no signal (-50 dB).
	signalFloor = 0.375
)

type SilenceEvent int

const (
	SilenceNone  SilenceEvent = iota
	SilenceWarn               // no input signal
	SilenceClear              // signal resumed after warning
)

type silenceMonitor struct {
	windowSz int
	ticks    int
	window   []bool
	warned   bool
}

func newSilenceMonitor(samplePeriod time.Duration) *silenceMonitor {
	windowSz := max(int(silenceWarnWindow/samplePeriod), 1)
	return &silenceMonitor{
		windowSz: windowSz,
		window:   make([]bool, windowSz),
	}
}

func (m *silenceMonitor) ratio() float64 {
	n := min(m.ticks, m.windowSz)
	if n == 0 {
		return 1.0
	}
	count := 0
	for i := 0; i < n; i++ {
		if m.window[(m.ticks-1-i+m.windowSz)%m.windowSz] {
			count++
		}
	}
	return float64(count) / float64(n)
}

func (m *silenceMonitor) Tick(hasSignal bool) SilenceEvent {
	m.window[m.ticks%m.windowSz] = hasSignal
	m.ticks++

	r := m.ratio()
	if m.ticks >= m.windowSz && r < signalMinRatio && !m.warned {
		m.warned = true
		return SilenceWarn
	}
	if m.warned && r >= signalClearRatio {
		m.warned = false
		return SilenceClear
	}
	return SilenceNone
}

func (m *silenceMonitor) Reset() {
	m.ticks = 0
	m.warned = false
}
