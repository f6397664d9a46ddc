package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"hapticrec/audio"
	"hapticrec/encoder"
)

// Recorder captures from an audio device into a WAV or FLAC file.
type Recorder struct {
	actx   audio.Context
	device *audio.DeviceInfo

	// Create opens capture destinations. Nil means os.Create.
	Create func(name string) (io.WriteSeeker, error)

	mu       sync.Mutex
	status   Status
	capture  audio.CaptureDevice
	enc      encoder.Encoder
	path     string
	channels int
	power    [2]float64
	samples  []int16
	encErr   bool

	events chan Event
}

func NewRecorder(actx audio.Context, device *audio.DeviceInfo) *Recorder {
	return &Recorder{
		actx:   actx,
		device: device,
		power:  [2]float64{MinPower, MinPower},
		events: make(chan Event, eventBuffer),
	}
}

func (r *Recorder) Events() <-chan Event { return r.events }

func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// DeviceName reports the capture device of the prepared session, or "".
func (r *Recorder) DeviceName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capture == nil {
		return ""
	}
	return r.capture.DeviceName()
}

// Prepare creates dest and opens the capture device. Preparing again before
// Start discards the previous destination.
func (r *Recorder) Prepare(dest string, sampleRate, channels int, quality string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := checkTransition(OpPrepare, r.status); err != nil {
		return err
	}
	if r.status == StatusReady {
		r.discardLocked()
	}

	f, err := r.create(dest)
	if err != nil {
		return fmt.Errorf("creating capture file: %w", err)
	}
	enc, err := encoder.New(quality, f, encoder.Format{SampleRate: sampleRate, Channels: channels})
	if err != nil {
		if c, ok := f.(io.Closer); ok {
			c.Close()
		}
		os.Remove(dest)
		return err
	}
	capture, err := r.actx.NewCapture(r.device, audio.CaptureConfig{
		SampleRate: uint32(sampleRate),
		Channels:   uint32(channels),
	})
	if err != nil {
		enc.Close()
		os.Remove(dest)
		return fmt.Errorf("opening capture device: %w", err)
	}
	capture.SetCallback(r.onData)

	r.capture = capture
	r.enc = enc
	r.path = dest
	r.channels = channels
	r.encErr = false
	r.status = StatusReady
	return nil
}

func (r *Recorder) create(name string) (io.WriteSeeker, error) {
	if r.Create != nil {
		return r.Create(name)
	}
	return os.Create(name)
}

// Discard drops a prepared capture that never started, closing the device
// and removing the destination.
func (r *Recorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := checkTransition(OpDiscard, r.status); err != nil {
		return err
	}
	r.discardLocked()
	return nil
}

// discardLocked must be called with r.mu held and nothing capturing.
func (r *Recorder) discardLocked() {
	if r.capture != nil {
		r.capture.ClearCallback()
		r.capture.Close()
		r.capture = nil
	}
	if r.enc != nil {
		r.enc.Close()
		r.enc = nil
	}
	if r.path != "" {
		os.Remove(r.path)
		r.path = ""
	}
	r.status = StatusIdle
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	next, err := checkTransition(OpStart, r.status)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	capture := r.capture
	r.status = next
	r.mu.Unlock()

	if err := capture.Start(); err != nil {
		r.mu.Lock()
		r.status = StatusReady
		r.mu.Unlock()
		return fmt.Errorf("starting capture: %w", err)
	}
	return nil
}

func (r *Recorder) Pause() error {
	r.mu.Lock()
	next, err := checkTransition(OpPause, r.status)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	capture := r.capture
	r.status = next
	r.power = [2]float64{MinPower, MinPower}
	r.mu.Unlock()

	capture.Stop()
	return nil
}

func (r *Recorder) Resume() error {
	r.mu.Lock()
	next, err := checkTransition(OpResume, r.status)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	capture := r.capture
	r.status = next
	r.mu.Unlock()

	if err := capture.Start(); err != nil {
		r.mu.Lock()
		r.status = StatusPaused
		r.mu.Unlock()
		return fmt.Errorf("resuming capture: %w", err)
	}
	return nil
}

// Stop ends capture and finalizes the file. Once it gets past the status
// check the recorder is idle again; a file that could not be finalized is
// reported through Finished with Success false, not as an error.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	next, err := checkTransition(OpStop, r.status)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	capture, enc, path := r.capture, r.enc, r.path
	r.status = next
	r.capture, r.enc, r.path = nil, nil, ""
	r.power = [2]float64{MinPower, MinPower}
	r.mu.Unlock()

	capture.Stop()
	capture.ClearCallback()
	capture.Close()

	closeErr := enc.Close()
	emit(r.events, Finished{Path: path, Success: closeErr == nil, Err: closeErr})
	return nil
}

// CurrentPower returns the RMS level of the last captured buffer in dB.
func (r *Recorder) CurrentPower(channel int) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusRecording || channel < 0 || channel > 1 {
		return MinPower
	}
	if r.channels == 1 {
		return r.power[0]
	}
	return r.power[channel]
}

func (r *Recorder) onData(data []byte, frameCount uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusRecording || r.enc == nil {
		return
	}

	n := len(data) / 2
	if cap(r.samples) < n {
		r.samples = make([]int16, n)
	}
	samples := r.samples[:n]
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	r.power = channelPower(samples, r.channels)

	if err := r.enc.Write(samples); err != nil {
		if !r.encErr {
			r.encErr = true
			emit(r.events, EncodeError{Err: err})
		}
	}
}

// Close releases the device, finalizing any capture still in progress.
func (r *Recorder) Close() error {
	err := r.Stop()
	if errors.Is(err, ErrNotInitialized) {
		return nil
	}
	return err
}

func channelPower(samples []int16, channels int) [2]float64 {
	var sum [2]float64
	frames := len(samples) / channels
	if frames == 0 {
		return [2]float64{MinPower, MinPower}
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels && c < 2; c++ {
			v := float64(samples[i*channels+c]) / 32768
			sum[c] += v * v
		}
	}
	var out [2]float64
	for c := range out {
		out[c] = toDB(math.Sqrt(sum[c] / float64(frames)))
	}
	if channels == 1 {
		out[1] = out[0]
	}
	return out
}

func toDB(rms float64) float64 {
	if rms <= 0 {
		return MinPower
	}
	return max(20*math.Log10(rms), MinPower)
}
