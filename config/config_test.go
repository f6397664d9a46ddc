package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Path)
	assert.Equal(t, 44100, cfg.Capture.SampleRate)
	assert.Equal(t, 2, cfg.Capture.Channels)
	assert.Equal(t, "pcm", cfg.Capture.Quality)
	assert.Equal(t, 10*time.Millisecond, cfg.Transport.RotationPeriod)
	assert.Equal(t, 50*time.Millisecond, cfg.Transport.SamplePeriod)
	assert.Equal(t, 20, cfg.Transport.Segments)
	assert.Equal(t, 275.0, cfg.Transport.VelocityScale)
	assert.Equal(t, []string{".wav", ".flac"}, cfg.Export.ImportKinds)
	assert.True(t, cfg.Haptics.Enabled)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
capture:
  quality: lossless
  channels: 1
  dir: ~/takes
transport:
  rotation_period: 20ms
  segments: 12
export:
  dirs: [/srv/audio]
  import_kinds: [WAV]
haptics:
  enabled: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "lossless", cfg.Capture.Quality)
	assert.Equal(t, 1, cfg.Capture.Channels)
	assert.Equal(t, filepath.Join(home, "takes"), cfg.Capture.Dir)
	assert.Equal(t, 20*time.Millisecond, cfg.Transport.RotationPeriod)
	assert.Equal(t, 12, cfg.Transport.Segments)
	assert.Equal(t, []string{"/srv/audio"}, cfg.Export.Dirs)
	assert.Equal(t, []string{".wav"}, cfg.Export.ImportKinds)
	assert.False(t, cfg.Haptics.Enabled)
	assert.Equal(t, 44100, cfg.Capture.SampleRate, "unset keys keep defaults")

	opts := cfg.TransportOptions()
	assert.Equal(t, 20*time.Millisecond, opts.RotationPeriod)
	assert.Equal(t, "lossless", opts.Quality)
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "capture:\n  quality: lossless\n")
	t.Setenv("HAPTICREC_CAPTURE_QUALITY", "pcm")
	t.Setenv("HAPTICREC_TRANSPORT_SAMPLE_PERIOD", "100ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pcm", cfg.Capture.Quality)
	assert.Equal(t, 100*time.Millisecond, cfg.Transport.SamplePeriod)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
capture:
  quality: mp3
  channels: 6
transport:
  rotation_period: 0s
export:
  import_kinds: [.ogg]
`)
	_, err := Load(path)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "capture.quality: failed oneof")
	assert.Contains(t, msg, "capture.channels: failed oneof")
	assert.Contains(t, msg, "transport.rotation_period: failed gt")
	assert.Contains(t, msg, "export.import_kinds[0]: failed oneof")
}

func TestYAMLShowsDurations(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "rotation_period: 10ms")
	assert.Contains(t, string(out), "quality: pcm")
	assert.NotContains(t, string(out), "path:")
}
