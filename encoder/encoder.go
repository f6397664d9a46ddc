package encoder

import (
	"fmt"
	"io"
)

const (
	BitsPerSample = 16
	BlockSize     = 4096
)

const (
	QualityPCM      = "pcm"
	QualityLossless = "lossless"
)

// Format describes interleaved 16-bit PCM input.
type Format struct {
	SampleRate int
	Channels   int
}

// Encoder writes interleaved int16 frames to a capture file. Close finalizes
// the container and closes the underlying writer.
type Encoder interface {
	Write(samples []int16) error
	Close() error
	TotalFrames() uint64
}

// Ext returns the file extension used for a quality setting.
func Ext(quality string) string {
	if quality == QualityLossless {
		return ".flac"
	}
	return ".wav"
}

func New(quality string, w io.WriteSeeker, f Format) (Encoder, error) {
	if f.Channels < 1 || f.Channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", f.Channels)
	}
	if f.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", f.SampleRate)
	}
	switch quality {
	case QualityPCM, "":
		return NewWAV(w, f)
	case QualityLossless:
		return NewFlac(w, f)
	default:
		return nil, fmt.Errorf("unknown quality %q (use %s or %s)", quality, QualityPCM, QualityLossless)
	}
}

func closeWriter(w io.Writer) error {
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
