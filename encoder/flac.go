package encoder

import (
	"fmt"
	"io"
	"sync"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// FlacEncoder buffers interleaved input into fixed BlockSize frames and
// writes one verbatim subframe per channel.
type FlacEncoder struct {
	w           io.Writer
	enc         *flac.Encoder
	format      Format
	pending     []int16
	totalFrames uint64
	mu          sync.Mutex
}

func NewFlac(w io.Writer, f Format) (*FlacEncoder, error) {
	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    uint32(f.SampleRate),
		NChannels:     uint8(f.Channels),
		BitsPerSample: BitsPerSample,
		NSamples:      0,
	}
	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)
	return &FlacEncoder{w: w, enc: enc, format: f}, nil
}

func (e *FlacEncoder) Write(samples []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending = append(e.pending, samples...)
	blockSamples := BlockSize * e.format.Channels
	for len(e.pending) >= blockSamples {
		if err := e.writeFrame(e.pending[:blockSamples]); err != nil {
			return err
		}
		e.pending = e.pending[blockSamples:]
	}
	return nil
}

// writeFrame must be called with e.mu held.
func (e *FlacEncoder) writeFrame(interleaved []int16) error {
	ch := e.format.Channels
	n := len(interleaved) / ch

	subframes := make([]*frame.Subframe, ch)
	for c := 0; c < ch; c++ {
		samples := make([]int32, n)
		for i := 0; i < n; i++ {
			samples[i] = int32(interleaved[i*ch+c])
		}
		subframes[c] = &frame.Subframe{
			SubHeader: frame.SubHeader{
				Pred: frame.PredVerbatim,
			},
			Samples:  samples,
			NSamples: n,
		}
	}

	channels := frame.ChannelsMono
	if ch == 2 {
		channels = frame.ChannelsLR
	}
	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(n),
			SampleRate:    uint32(e.format.SampleRate),
			Channels:      channels,
			BitsPerSample: BitsPerSample,
		},
		Subframes: subframes,
	}

	if err := e.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	e.totalFrames += uint64(n)
	return nil
}

// Close flushes the partial block and finalizes the stream. The flac
// encoder closes the underlying writer itself.
func (e *FlacEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rest := len(e.pending) - len(e.pending)%e.format.Channels; rest > 0 {
		if err := e.writeFrame(e.pending[:rest]); err != nil {
			return err
		}
	}
	e.pending = nil
	return e.enc.Close()
}

func (e *FlacEncoder) TotalFrames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFrames
}
