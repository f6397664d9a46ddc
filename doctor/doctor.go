// Package doctor runs the `hapticrec doctor` diagnostics.
package doctor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"hapticrec/audio"
	"hapticrec/clipboard"
	"hapticrec/encoder"
	"hapticrec/engine"
	"hapticrec/haptic"
	"hapticrec/hotkey"
	"hapticrec/log"
	"hapticrec/shutdown"
)

const (
	DefaultCaptureFor    = time.Second
	DefaultHotkeyTimeout = 10 * time.Second
	pollInterval         = 50 * time.Millisecond
	clipboardTimeout     = 3 * time.Second
)

type Options struct {
	Out io.Writer

	Audio      audio.Context
	Device     *audio.DeviceInfo
	SampleRate int
	Channels   int
	CaptureFor time.Duration

	Haptics   bool
	Clipboard bool

	// Hotkey is waited on only when set. The check needs a person at the
	// keyboard, so callers leave it nil for unattended runs.
	Hotkey        hotkey.Hotkey
	HotkeyTimeout time.Duration
}

type check struct {
	name string
	run  func(o *Options) (string, error)
}

var errSkipped = errors.New("skipped")

func skip(reason string) (string, error) { return reason, errSkipped }

// Run executes every check and returns an exit code (0=all pass, 1=any fail).
func Run(o Options) int {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.CaptureFor <= 0 {
		o.CaptureFor = DefaultCaptureFor
	}
	if o.HotkeyTimeout <= 0 {
		o.HotkeyTimeout = DefaultHotkeyTimeout
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if state, err := term.GetState(fd); err == nil {
			defer term.Restore(fd, state)
		}
	}
	setupInterruptHandler(o.Out)

	fmt.Fprintln(o.Out, "hapticrec doctor - system diagnostics")
	fmt.Fprintln(o.Out, "=====================================")

	checks := []check{
		{"Log directory", checkLogDir},
		{"Capture", checkCapture},
		{"Haptic click", checkHaptics},
		{"Clipboard", checkClipboard},
		{"Hotkey", checkHotkey},
	}

	allPass := true
	for i, c := range checks {
		fmt.Fprintln(o.Out)
		fmt.Fprintf(o.Out, "[%d/%d] %s\n", i+1, len(checks), c.name)
		msg, err := c.run(&o)
		switch {
		case errors.Is(err, errSkipped):
			fmt.Fprintf(o.Out, "  SKIP: %s\n", msg)
		case err != nil:
			fmt.Fprintf(o.Out, "  FAIL: %v\n", err)
			log.Warnf("doctor: %s: %v", c.name, err)
			allPass = false
		default:
			fmt.Fprintf(o.Out, "  PASS: %s\n", msg)
		}
	}

	fmt.Fprintln(o.Out)
	if allPass {
		fmt.Fprintln(o.Out, "All checks passed!")
		return 0
	}
	fmt.Fprintln(o.Out, "Some checks failed. See details above.")
	return 1
}

func setupInterruptHandler(out io.Writer) {
	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(out, "\nInterrupted")
		os.Exit(1)
	}()
}

func checkLogDir(_ *Options) (string, error) {
	if err := log.EnsureDir(); err != nil {
		return "", err
	}
	probe := filepath.Join(log.Dir(), ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return "", fmt.Errorf("log dir not writable: %w", err)
	}
	os.Remove(probe)
	return log.Dir(), nil
}

// checkCapture records into a scratch WAV through the real engine and
// reports the loudest level seen per channel.
func checkCapture(o *Options) (string, error) {
	if o.Audio == nil {
		return skip("no audio context")
	}
	tmp, err := os.MkdirTemp("", "hapticrec-doctor-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmp)
	dest := filepath.Join(tmp, "probe.wav")

	rec := engine.NewRecorder(o.Audio, o.Device)
	if err := rec.Prepare(dest, o.SampleRate, o.Channels, encoder.QualityPCM); err != nil {
		return "", err
	}
	if err := rec.Start(); err != nil {
		rec.Discard()
		return "", err
	}
	fmt.Fprintf(o.Out, "  Recording %s from %s", o.CaptureFor, deviceLabel(rec))

	peak := [2]float64{engine.MinPower, engine.MinPower}
	deadline := time.Now().Add(o.CaptureFor)
	for time.Now().Before(deadline) {
		time.Sleep(pollInterval)
		for c := range peak {
			peak[c] = max(peak[c], rec.CurrentPower(c))
		}
	}
	fmt.Fprintln(o.Out, " done")
	if err := rec.Stop(); err != nil {
		return "", err
	}
	if err := finalizeErr(rec.Events()); err != nil {
		return "", fmt.Errorf("finalizing capture: %w", err)
	}

	info, err := encoder.Probe(dest)
	if err != nil {
		return "", fmt.Errorf("reading back capture: %w", err)
	}
	if info.Frames == 0 {
		return "", errors.New("device delivered no audio")
	}
	summary := fmt.Sprintf("%.1fs at %d Hz, peak L %.1f dB, R %.1f dB",
		info.Duration().Seconds(), info.SampleRate, peak[0], peak[1])
	if peak[0] <= engine.MinPower && peak[1] <= engine.MinPower {
		return "", fmt.Errorf("no signal (%s)", summary)
	}
	return summary, nil
}

func deviceLabel(rec *engine.Recorder) string {
	name := rec.DeviceName()
	if name == "" {
		return "default device"
	}
	if audio.IsBluetooth(name) {
		return name + " (bluetooth)"
	}
	return name
}

func checkHaptics(o *Options) (string, error) {
	if !o.Haptics {
		return skip("haptics disabled")
	}
	if err := haptic.Test(); err != nil {
		return "", err
	}
	return "click played", nil
}

func checkClipboard(o *Options) (string, error) {
	if !o.Clipboard {
		return skip("clipboard export disabled")
	}
	if !clipboard.Supported() {
		return skip("no clipboard backend")
	}

	want := fmt.Sprintf("hapticrec-doctor-%d", time.Now().UnixNano())
	type result struct {
		got   string
		err   error
		phase string
	}
	ch := make(chan result, 1)
	go func() {
		if err := clipboard.Copy(want); err != nil {
			ch <- result{err: err, phase: "write"}
			return
		}
		got, err := clipboard.Read()
		ch <- result{got: got, err: err, phase: "read"}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("clipboard %s failed: %w", res.phase, res.err)
		}
		if res.got != want {
			return "", fmt.Errorf("clipboard mismatch: wrote %q, got %q", want, res.got)
		}
		return "clipboard write/read verified", nil
	case <-time.After(clipboardTimeout):
		return "", errors.New("clipboard timed out (clipboard tool hung?)")
	}
}

func checkHotkey(o *Options) (string, error) {
	if o.Hotkey == nil {
		return skip("hotkey disabled or not interactive")
	}
	if err := o.Hotkey.Register(); err != nil {
		return "", fmt.Errorf("could not register hotkey: %w", err)
	}
	defer o.Hotkey.Unregister()

	fmt.Fprintln(o.Out, "  Press Ctrl+Shift+Space...")
	select {
	case <-o.Hotkey.Keydown():
		return "hotkey detected", nil
	case <-time.After(o.HotkeyTimeout):
		return "", errors.New("timeout waiting for hotkey")
	}
}

// finalizeErr reads the events already queued by Stop up to its Finished.
func finalizeErr(events <-chan engine.Event) error {
	for {
		select {
		case ev := <-events:
			if f, ok := ev.(engine.Finished); ok {
				return f.Err
			}
		default:
			return nil
		}
	}
}
