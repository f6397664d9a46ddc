package encoder

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWavEncoderHeaderPatched(t *testing.T) {
	f := createFile(t, "capture.wav")
	path := f.Name()

	enc, err := NewWAV(f, Format{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatalf("NewWAV: %v", err)
	}
	samples := stereoRamp(44100)
	if err := enc.Write(samples[:len(samples)/2]); err != nil {
		t.Fatal(err)
	}
	if err := enc.Write(samples[len(samples)/2:]); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(data), wavHeaderSize+44100*4; got != want {
		t.Fatalf("file size = %d, want %d", got, want)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != 44100*4 {
		t.Errorf("data size = %d, want %d", got, 44100*4)
	}
	if got := int16(binary.LittleEndian.Uint16(data[wavHeaderSize+2:])); got != 0 {
		t.Errorf("first right sample = %d, want 0", got)
	}
	if got := int16(binary.LittleEndian.Uint16(data[wavHeaderSize+4:])); got != 1 {
		t.Errorf("second left sample = %d, want 1", got)
	}

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	want := Info{Format: QualityPCM, SampleRate: 44100, Channels: 2, Frames: 44100}
	if info != want {
		t.Errorf("Probe = %+v, want %+v", info, want)
	}
	if info.Duration() != time.Second {
		t.Errorf("Duration = %v, want 1s", info.Duration())
	}
	if enc.TotalFrames() != 44100 {
		t.Errorf("TotalFrames = %d", enc.TotalFrames())
	}
}

func TestNewSelectsContainer(t *testing.T) {
	f := createFile(t, "x")
	enc, err := New(QualityLossless, f, Format{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := enc.(*FlacEncoder); !ok {
		t.Errorf("lossless gave %T", enc)
	}
	enc.Close()

	f = createFile(t, "y")
	enc, err = New(QualityPCM, f, Format{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := enc.(*WavEncoder); !ok {
		t.Errorf("pcm gave %T", enc)
	}
	enc.Close()

	if _, err := New("mp3", createFile(t, "z"), Format{SampleRate: 44100, Channels: 2}); err == nil {
		t.Error("expected error for unknown quality")
	}
	if _, err := New(QualityPCM, createFile(t, "w"), Format{SampleRate: 44100, Channels: 6}); err == nil {
		t.Error("expected error for 6 channels")
	}
}

func TestExt(t *testing.T) {
	if Ext(QualityLossless) != ".flac" || Ext(QualityPCM) != ".wav" {
		t.Errorf("Ext mismatch")
	}
}

func TestProbeRejectsUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Probe(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Probe err = %v, want ErrUnsupportedFormat", err)
	}

	if _, err := Probe(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}
