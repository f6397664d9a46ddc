package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"

	"hapticrec/audio"
	"hapticrec/config"
	"hapticrec/engine"
	"hapticrec/haptic"
	"hapticrec/hotkey"
	"hapticrec/log"
	"hapticrec/loop"
	"hapticrec/picker"
	"hapticrec/transport"
)

// recorder is the engine surface a session drives.
type recorder interface {
	transport.Engine
	Events() <-chan engine.Event
	Close() error
}

type appDeps struct {
	Clock    clock.Clock
	Recorder recorder
	Picker   picker.Picker
	Haptics  transport.Haptics
	Sink     transport.Sink
	// Hotkey is optional.
	Hotkey hotkey.Hotkey
	Device string
}

// app is one running session: the loop, the transport machine on it and
// the goroutines that feed it engine events and hotkey presses.
type app struct {
	cfg     *config.Config
	loop    *loop.Loop
	machine *transport.Machine
	rec     recorder
	hk      hotkey.Hotkey
	device  string
}

func newApp(cfg *config.Config, d appDeps) *app {
	l := loop.New(d.Clock)
	m := transport.NewMachine(transport.Deps{
		Scheduler: l,
		Engine:    d.Recorder,
		Haptics:   d.Haptics,
		Picker:    d.Picker,
		Sink:      d.Sink,
	}, cfg.TransportOptions())
	return &app{
		cfg:     cfg,
		loop:    l,
		machine: m,
		rec:     d.Recorder,
		hk:      d.Hotkey,
		device:  d.Device,
	}
}

// openRecorder opens the audio backend and the configured capture device.
// An unknown device name falls back to the system default with a warning.
func openRecorder(cfg *config.Config) (*engine.Recorder, audio.Context, string, error) {
	actx, err := audio.NewContext()
	if err != nil {
		return nil, nil, "", fmt.Errorf("initializing audio context: %w", err)
	}
	dev, err := audio.FindDevice(actx, cfg.Capture.Device)
	if err != nil {
		log.Warnf("listing devices: %v", err)
	}
	if dev == nil && cfg.Capture.Device != "" {
		log.Warnf("device %q not found, using default", cfg.Capture.Device)
	}
	return engine.NewRecorder(actx, dev), actx, deviceLineText(dev), nil
}

func newHaptics(cfg *config.Config) transport.Haptics {
	if !cfg.Haptics.Enabled {
		return haptic.Disabled()
	}
	return haptic.New(clock.New())
}

// run drives the session until ctx ends, then finalizes any capture in
// progress and releases the engine.
func (a *app) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.forwardEvents(ctx)
	if a.hk != nil {
		if err := a.hk.Register(); err != nil {
			log.Warnf("hotkey unavailable: %v", err)
		} else {
			defer a.hk.Unregister()
			go a.forwardHotkey(ctx)
		}
	}

	s := a.machine.Session()
	log.SessionStart(s.ID, a.device, a.cfg.Capture.Quality, a.cfg.Capture.SampleRate, a.cfg.Capture.Channels)
	a.loop.Post(a.machine.Refresh)

	err := a.loop.Run(ctx)
	a.loop.Close()
	a.machine.Close()
	if cerr := a.rec.Close(); cerr != nil {
		log.Warnf("closing recorder: %v", cerr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) forwardEvents(ctx context.Context) {
	events := a.rec.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			a.loop.Post(func() { a.machine.HandleEngineEvent(ev) })
		}
	}
}

func (a *app) forwardHotkey(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.hk.Keydown():
			a.Record()
		}
	}
}

// post runs op on the loop. The machine has already reported any failure
// to the sink, so the error is dropped here.
func (a *app) post(op func(m *transport.Machine) error) {
	a.loop.Post(func() { op(a.machine) })
}

func (a *app) Play()      { a.post((*transport.Machine).OnPlayPressed) }
func (a *app) Record()    { a.post((*transport.Machine).OnRecordPressed) }
func (a *app) Stop()      { a.post((*transport.Machine).OnStopPressed) }
func (a *app) DoubleTap() { a.post((*transport.Machine).OnDoubleTap) }
func (a *app) DragEnd()   { a.post((*transport.Machine).OnDragEnd) }

func (a *app) DragBegin(vx float64) {
	a.post(func(m *transport.Machine) error { return m.OnDragBegin(vx) })
}

func (a *app) DragMove(dx, width, vx float64) {
	a.post(func(m *transport.Machine) error { return m.OnDragMove(dx, width, vx) })
}
