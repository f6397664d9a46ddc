package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mylog", got)
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "logs"), got)
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("HAPTICREC_LOG_PATH", "/tmp/hapticrec-env-log")
	got, err := ResolveDir("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hapticrec-env-log", got)
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("HAPTICREC_LOG_PATH", "")
	got, err := ResolveDir("")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "hapticrec")
}

func TestInitCreatesCapturesLog(t *testing.T) {
	tmp := setupLogDir(t)
	require.NoError(t, Init())

	_, err := os.Stat(filepath.Join(tmp, capturesName))
	assert.NoError(t, err)
}

func TestDiagnosticsWritten(t *testing.T) {
	tmp := setupLogDir(t)
	require.NoError(t, Init())

	Transport("abc", "transport_play", "Idle", "Armed")
	Warnf("engine %s failed", "start")
	Close()

	data, err := os.ReadFile(filepath.Join(tmp, diagName))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "transport_play")
	assert.Contains(t, out, "session=abc")
	assert.Contains(t, out, "to=Armed")
	assert.Contains(t, out, "engine start failed")
}

func TestCaptureExported(t *testing.T) {
	tmp := setupLogDir(t)
	require.NoError(t, Init())

	CaptureExported("abc", "/tmp/take.wav", "/home/me/Music/take.wav", 42)

	data, err := os.ReadFile(filepath.Join(tmp, capturesName))
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, "/tmp/take.wav")
	assert.Contains(t, line, "42s")
	// format: "2006-01-02 15:04:05\t[pid]\tartifact\tlocation\tNs\n"
	assert.Equal(t, 4, strings.Count(line, "\t"))
}

func TestHelpersInertBeforeInit(t *testing.T) {
	setupLogDir(t)
	Info("dropped")
	CaptureExported("abc", "a", "b", 1)
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)
	require.NoError(t, Init())
	Close()
	Close() // should not panic
}
