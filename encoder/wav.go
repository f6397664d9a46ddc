package encoder

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

const wavHeaderSize = 44

// WavEncoder writes a canonical 44-byte RIFF header up front and patches
// the chunk sizes on Close.
type WavEncoder struct {
	w           io.WriteSeeker
	format      Format
	dataBytes   uint32
	totalFrames uint64
	buf         []byte
	mu          sync.Mutex
}

func NewWAV(w io.WriteSeeker, f Format) (*WavEncoder, error) {
	e := &WavEncoder{w: w, format: f}
	if _, err := w.Write(wavHeader(f, 0)); err != nil {
		return nil, fmt.Errorf("writing wav header: %w", err)
	}
	return e, nil
}

func wavHeader(f Format, dataSize uint32) []byte {
	blockAlign := f.Channels * BitsPerSample / 8
	buf := make([]byte, wavHeaderSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], wavHeaderSize-8+dataSize)
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(f.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], BitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], dataSize)
	return buf
}

func (e *WavEncoder) Write(samples []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	need := len(samples) * 2
	if cap(e.buf) < need {
		e.buf = make([]byte, need)
	}
	buf := e.buf[:need]
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	if _, err := e.w.Write(buf); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	e.dataBytes += uint32(need)
	e.totalFrames += uint64(len(samples) / e.format.Channels)
	return nil
}

func (e *WavEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.patchHeader()
	if cerr := closeWriter(e.w); err == nil {
		err = cerr
	}
	return err
}

func (e *WavEncoder) patchHeader() error {
	if _, err := e.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking wav header: %w", err)
	}
	if _, err := e.w.Write(wavHeader(e.format, e.dataBytes)); err != nil {
		return fmt.Errorf("patching wav header: %w", err)
	}
	return nil
}

func (e *WavEncoder) TotalFrames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFrames
}
