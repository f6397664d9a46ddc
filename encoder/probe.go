package encoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mewkiz/flac"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Info is what Probe learns about an audio file without decoding it.
type Info struct {
	Format     string
	SampleRate int
	Channels   int
	Frames     uint64
}

func (i Info) Duration() time.Duration {
	if i.SampleRate <= 0 {
		return 0
	}
	return time.Duration(i.Frames) * time.Second / time.Duration(i.SampleRate)
}

// Probe identifies a WAV or FLAC file by its magic and reads its stream
// parameters.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	switch string(magic[:]) {
	case "fLaC":
		return probeFlac(path)
	case "RIFF":
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return Info{}, err
		}
		return probeWAV(f)
	}
	return Info{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

func probeFlac(path string) (Info, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("parsing flac: %w", err)
	}
	defer stream.Close()

	return Info{
		Format:     QualityLossless,
		SampleRate: int(stream.Info.SampleRate),
		Channels:   int(stream.Info.NChannels),
		Frames:     stream.Info.NSamples,
	}, nil
}

// probeWAV walks the RIFF chunk list for fmt and data.
func probeWAV(r io.ReadSeeker) (Info, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Info{}, fmt.Errorf("reading riff header: %w", err)
	}
	if string(riff[8:12]) != "WAVE" {
		return Info{}, ErrUnsupportedFormat
	}

	info := Info{Format: QualityPCM}
	var blockAlign int
	var haveFmt bool
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return Info{}, fmt.Errorf("wav has no data chunk: %w", err)
		}
		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return Info{}, fmt.Errorf("short fmt chunk (%d bytes)", size)
			}
			var fmtChunk [16]byte
			if _, err := io.ReadFull(r, fmtChunk[:]); err != nil {
				return Info{}, fmt.Errorf("reading fmt chunk: %w", err)
			}
			info.Channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			blockAlign = int(binary.LittleEndian.Uint16(fmtChunk[12:14]))
			haveFmt = true
			size -= 16
		case "data":
			if !haveFmt || blockAlign == 0 {
				return Info{}, errors.New("wav data chunk before fmt")
			}
			info.Frames = uint64(size) / uint64(blockAlign)
			return info, nil
		}

		// Chunks are word aligned.
		if size%2 == 1 {
			size++
		}
		if _, err := r.Seek(size, io.SeekCurrent); err != nil {
			return Info{}, err
		}
	}
}
