package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"time"
)

const (
	fakeFrameSize = 1024
	fakeToneHz    = 440
)

// FakeContext produces a synthetic stereo tone. Left and Right are peak
// amplitudes in [0,1]. With Realtime unset nothing is fed until Push is
// called, which keeps tests deterministic.
type FakeContext struct {
	Left     float64
	Right    float64
	Realtime bool

	// StartErr, when set, is returned by every capture's Start.
	StartErr error
}

func NewFakeContext(left, right float64, realtime bool) *FakeContext {
	return &FakeContext{Left: left, Right: right, Realtime: realtime}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake tone"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	if config.SampleRate == 0 {
		config.SampleRate = DefaultSampleRate
	}
	if config.Channels == 0 {
		config.Channels = DefaultChannels
	}
	return &FakeCapture{
		config:   config,
		amp:      [2]float64{f.Left, f.Right},
		realtime: f.Realtime,
		startErr: f.StartErr,
	}, nil
}

type FakeCapture struct {
	config   CaptureConfig
	amp      [2]float64
	realtime bool
	startErr error

	mu       sync.Mutex
	cb       DataCallback
	phase    uint64
	running  bool
	stopCh   chan struct{}
	feedDone chan struct{}
	starts   int
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake tone" }

// Starts reports how many times Start has been called.
func (f *FakeCapture) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *FakeCapture) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Push synchronously feeds frames of tone to the callback if the capture is running.
func (f *FakeCapture) Push(frames int) {
	f.mu.Lock()
	cb := f.cb
	running := f.running
	chunk := f.render(frames)
	f.mu.Unlock()
	if cb != nil && running {
		cb(chunk, uint32(frames))
	}
}

// render must be called with f.mu held.
func (f *FakeCapture) render(frames int) []byte {
	ch := int(f.config.Channels)
	buf := make([]byte, frames*ch*2)
	rate := float64(f.config.SampleRate)
	for i := 0; i < frames; i++ {
		t := float64(f.phase) / rate
		f.phase++
		s := math.Sin(2 * math.Pi * fakeToneHz * t)
		for c := 0; c < ch; c++ {
			amp := f.amp[min(c, 1)]
			v := int16(s * amp * 32767)
			binary.LittleEndian.PutUint16(buf[(i*ch+c)*2:], uint16(v))
		}
	}
	return buf
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	if f.running {
		return nil
	}
	f.running = true
	if !f.realtime {
		return nil
	}

	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})
	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(f.config.SampleRate)
	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				f.Push(fakeFrameSize)
			}
		}
	}(f.stopCh, f.feedDone)
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	f.running = false
	stop, done := f.stopCh, f.feedDone
	f.stopCh, f.feedDone = nil, nil
	f.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (f *FakeCapture) Close() { f.Stop() }
