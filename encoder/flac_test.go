package encoder

import (
	"os"
	"path/filepath"
	"testing"
)

func stereoRamp(frames int) []int16 {
	samples := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		samples[i*2] = int16(i % 1000)
		samples[i*2+1] = int16(-(i % 700))
	}
	return samples
}

func createFile(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return f
}

func TestFlacEncoder(t *testing.T) {
	f := createFile(t, "capture.flac")
	path := f.Name()

	enc, err := NewFlac(f, Format{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	samples := stereoRamp(BlockSize*2 + 100)
	for i := 0; i < len(samples); i += 1000 {
		end := min(i+1000, len(samples))
		if err := enc.Write(samples[i:end]); err != nil {
			t.Fatalf("Write at offset %d: %v", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got, want := enc.TotalFrames(), uint64(BlockSize*2+100); got != want {
		t.Errorf("TotalFrames = %d, want %d", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Channels != 2 || info.SampleRate != 44100 {
		t.Errorf("Probe = %+v, want 2ch 44100Hz", info)
	}
	if info.Format != QualityLossless {
		t.Errorf("Format = %q", info.Format)
	}
}

func TestFlacEncoderEmpty(t *testing.T) {
	f := createFile(t, "empty.flac")
	enc, err := NewFlac(f, Format{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close on empty encoder: %v", err)
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("TotalFrames = %d, want 0", enc.TotalFrames())
	}
	st, err := os.Stat(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() == 0 {
		t.Error("expected non-empty FLAC output (at least header)")
	}
}

func TestFlacEncoderPartialBlock(t *testing.T) {
	f := createFile(t, "partial.flac")
	enc, err := NewFlac(f, Format{SampleRate: 48000, Channels: 1})
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	partial := make([]int16, BlockSize/4)
	for i := range partial {
		partial[i] = int16(i % 1000)
	}
	if err := enc.Write(partial); err != nil {
		t.Fatalf("Write partial: %v", err)
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("partial block flushed early: TotalFrames = %d", enc.TotalFrames())
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != uint64(len(partial)) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), len(partial))
	}
}
