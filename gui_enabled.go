//go:build gui

package main

import (
	"context"
	"runtime"

	"hapticrec/config"
	"hapticrec/gui"
	"hapticrec/hotkey"
	"hapticrec/shutdown"
)

func runGUI(cfg *config.Config, _ cliFlags) error {
	// Fyne and Core Audio both want the main thread; open audio on it
	// before the window starts.
	runtime.LockOSThread()

	rec, actx, device, err := openRecorder(cfg)
	if err != nil {
		return err
	}
	defer actx.Close()

	ctx, stop := shutdown.Context(context.Background())
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := gui.NewApp(cfg.Transport.Segments, device, cfg.Export.ImportDir)
	var hk hotkey.Hotkey
	if cfg.Hotkey.Enabled {
		hk = hotkey.New()
	}
	a := newApp(cfg, appDeps{
		Recorder: rec,
		Picker:   g.Picker(),
		Haptics:  newHaptics(cfg),
		Sink:     g,
		Hotkey:   hk,
		Device:   device,
	})
	g.Bind(a)

	errc := make(chan error, 1)
	g.Run(func() {
		go func() { errc <- a.run(ctx) }()
		go func() {
			<-ctx.Done()
			g.Quit()
		}()
	})
	cancel()
	return <-errc
}
