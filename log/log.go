package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	diagName     = "diagnostics_log.txt"
	capturesName = "captures_log.txt"
)

var (
	diagLog      zerolog.Logger
	diagWriter   *lumberjack.Logger
	capturesFile *os.File
	logMu        sync.Mutex
	logReady     bool
	pid          int
	dir          string

	// MaxSizeMB and MaxBackups bound the rotated diagnostics log.
	MaxSizeMB  = 5
	MaxBackups = 3
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: --logpath flag
	if flagPath != "" {
		return absolute(flagPath)
	}

	// Priority 2: HAPTICREC_LOG_PATH environment variable
	if envPath := os.Getenv("HAPTICREC_LOG_PATH"); envPath != "" {
		return absolute(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error
	capturesFile, err = os.OpenFile(filepath.Join(dir, capturesName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	diagWriter = &lumberjack.Logger{
		Filename:   filepath.Join(dir, diagName),
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
	}
	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagWriter,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagWriter != nil {
		diagWriter.Close()
		diagWriter = nil
	}
	if capturesFile != nil {
		capturesFile.Close()
		capturesFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Transport records one accepted transport transition.
func Transport(session, event, from, to string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", session).
		Str("from", from).
		Str("to", to).
		Msg(event)
}

func SessionStart(session, device, quality string, sampleRate, channels int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", session).
		Str("device", device).
		Str("quality", quality).
		Int("sample_rate", sampleRate).
		Int("channels", channels).
		Msg("session_start")
}

func SessionEnd(session string, captures int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", session).
		Int("captures", captures).
		Msg("session_end")
}

// CaptureExported appends a line to captures_log.txt and a structured
// entry to the diagnostics log.
func CaptureExported(session, artifact, location string, seconds int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", session).
		Str("artifact", artifact).
		Str("location", location).
		Int("elapsed_s", seconds).
		Msg("capture_exported")

	logMu.Lock()
	defer logMu.Unlock()
	if capturesFile == nil {
		return
	}
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\t%ds\n", time.Now().Format("2006-01-02 15:04:05"), pid, artifact, location, seconds)
	capturesFile.WriteString(line)
}
