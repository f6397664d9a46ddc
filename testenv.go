package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"hapticrec/audio"
	"hapticrec/config"
	"hapticrec/encoder"
	"hapticrec/engine"
	"hapticrec/haptic"
	"hapticrec/picker"
	"hapticrec/shutdown"
	"hapticrec/transport"
)

const waitExportTimeout = 10 * time.Second

type scriptOptions struct {
	In          io.Reader
	Out         io.Writer
	Left, Right float64
}

// scriptSink prints one line per discrete event.
type scriptSink struct {
	transport.NopSink

	mu   sync.Mutex
	out  io.Writer
	busy bool

	// settled receives each time a picker closes.
	settled chan struct{}
}

func newScriptSink(out io.Writer) *scriptSink {
	return &scriptSink{out: out, settled: make(chan struct{}, 16)}
}

func (s *scriptSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *scriptSink) Transport(st transport.State, b transport.Buttons) {
	s.printf("state %s record=%t play=%t", st, b.Record, b.Play)
}

func (s *scriptSink) Busy(on bool) {
	s.mu.Lock()
	was := s.busy
	s.busy = on
	s.mu.Unlock()
	if on || !was {
		return
	}
	select {
	case s.settled <- struct{}{}:
	default:
	}
}

func (s *scriptSink) Imported(path string, info encoder.Info) {
	s.printf("%s", importLine(path, info))
}

func (s *scriptSink) Notice(err error)         { s.printf("notice %v", err) }
func (s *scriptSink) Flash(b transport.Button) { s.printf("flash %s", b) }
func (s *scriptSink) NoSignal(warn bool)       { s.printf("no-signal %t", warn) }
func (s *scriptSink) Exported(location string) { s.printf("exported %s", location) }

// runScript runs a session against a synthetic tone, driven line by line
// from o.In.
func runScript(cfg *config.Config, o scriptOptions) error {
	actx := audio.NewFakeContext(o.Left, o.Right, true)
	defer actx.Close()

	sink := newScriptSink(o.Out)
	a := newApp(cfg, appDeps{
		Recorder: engine.NewRecorder(actx, nil),
		Picker:   &picker.Auto{Dirs: cfg.Export.Dirs, ImportDir: cfg.Export.ImportDir},
		Haptics:  haptic.Disabled(),
		Sink:     sink,
		Device:   "fake tone",
	})

	ctx, stop := shutdown.Context(context.Background())
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- a.run(ctx) }()
	sink.printf("session %s", a.machine.Session().ID)

	done := make(chan error, 1)
	go func() { done <- drive(a, sink, o.In) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
	}
	cancel()
	if runErr := <-errc; err == nil {
		err = runErr
	}
	return err
}

func drive(a *app, sink *scriptSink, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		if cmd == "" || strings.HasPrefix(cmd, "#") {
			continue
		}
		name, arg, _ := strings.Cut(cmd, " ")
		switch name {
		case "PLAY":
			a.Play()
		case "RECORD":
			a.Record()
		case "STOP":
			a.Stop()
		case "DTAP":
			a.DoubleTap()
		case "DRAG":
			dx, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("DRAG: %w", err)
			}
			a.DragBegin(0)
			a.DragMove(dx*cellPixels, wheelCols*cellPixels, dx*cellPixels*10)
			a.DragEnd()
		case "SLEEP":
			ms, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("SLEEP: %w", err)
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
		case "WAIT_EXPORT":
			select {
			case <-sink.settled:
			case <-time.After(waitExportTimeout):
				return errors.New("WAIT_EXPORT: timed out")
			}
		case "QUIT":
			a.loop.Call(func() {})
			return nil
		default:
			return fmt.Errorf("unknown command %q", cmd)
		}
	}
	a.loop.Call(func() {})
	return scanner.Err()
}
