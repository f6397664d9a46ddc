//go:build gui

// Package gui is the desktop front end: a window with the transport wheel,
// level meters and buttons.
package gui

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"hapticrec/encoder"
	"hapticrec/transport"
)

const flashDuration = 150 * time.Millisecond

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	picker  *Picker
	tray    *tray

	wheel   *WheelWidget
	meter   *MeterWidget
	elapsed *canvas.Text
	status  *widget.Label
	warn    *canvas.Text
	info    *widget.Label
	device  *widget.Label

	rec, play, stop *widget.Button
	ctl             Controller

	mu      sync.Mutex
	state   transport.State
	buttons transport.Buttons
	busy    bool
}

func NewApp(segments int, device, importDir string) *App {
	a := &App{fyneApp: app.NewWithID("io.hapticrec.gui")}
	a.fyneApp.Settings().SetTheme(&darkTheme{})
	a.window = a.fyneApp.NewWindow("hapticrec")
	a.picker = &Picker{win: a.window, importDir: importDir}

	a.wheel = NewWheelWidget(a)
	a.meter = NewMeterWidget(segments)
	a.elapsed = canvas.NewText(transport.FormatElapsed(0), colorNeutral)
	a.elapsed.TextSize = 28
	a.elapsed.TextStyle = fyne.TextStyle{Monospace: true}
	a.status = widget.NewLabel("STANDBY")
	a.warn = canvas.NewText("", colorWarn)
	a.info = widget.NewLabel("")
	a.info.Wrapping = fyne.TextWrapWord
	a.device = widget.NewLabel(device)

	a.rec = widget.NewButtonWithIcon("Rec", theme.MediaRecordIcon(), a.Record)
	a.play = widget.NewButtonWithIcon("Play", theme.MediaPlayIcon(), a.Play)
	a.stop = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), a.Stop)
	a.tray = newTray(a)
	a.applyButtons()
	return a
}

// Picker returns the dialogs bound to this window.
func (a *App) Picker() *Picker { return a.picker }

// Bind routes input to ctl. It must be called before Run.
func (a *App) Bind(ctl Controller) { a.ctl = ctl }

// Controller forwarding keeps the widgets bound before the session exists.
func (a *App) Play()                          { a.ctl.Play() }
func (a *App) Record()                        { a.ctl.Record() }
func (a *App) Stop()                          { a.ctl.Stop() }
func (a *App) DoubleTap()                     { a.ctl.DoubleTap() }
func (a *App) DragBegin(vx float64)           { a.ctl.DragBegin(vx) }
func (a *App) DragMove(dx, width, vx float64) { a.ctl.DragMove(dx, width, vx) }
func (a *App) DragEnd()                       { a.ctl.DragEnd() }

// Run shows the window and blocks until it closes. onReady runs first.
func (a *App) Run(onReady func()) {
	buttons := container.NewGridWithColumns(3, a.rec, a.play, a.stop)
	readout := container.NewHBox(a.status, layoutSpacer(), a.elapsed)
	content := container.NewVBox(
		container.NewCenter(a.wheel),
		readout,
		a.meter,
		a.warn,
		buttons,
		a.info,
		a.device,
	)
	a.window.SetContent(container.NewPadded(content))
	a.window.SetIcon(theme.MediaRecordIcon())
	a.window.Canvas().SetOnTypedRune(a.typedRune)

	onReady()
	a.window.ShowAndRun()
}

func layoutSpacer() fyne.CanvasObject {
	r := canvas.NewRectangle(color.Transparent)
	r.SetMinSize(fyne.NewSize(16, 1))
	return r
}

func (a *App) typedRune(r rune) {
	switch r {
	case 'p':
		a.Play()
	case 'r':
		a.Record()
	case 's':
		a.Stop()
	case 'i':
		a.DoubleTap()
	}
}

func (a *App) Quit() {
	fyne.Do(a.fyneApp.Quit)
}

// applyButtons must run on the fyne thread.
func (a *App) applyButtons() {
	a.mu.Lock()
	b, st, busy := a.buttons, a.state, a.busy
	a.mu.Unlock()

	light := func(btn *widget.Button, lit bool, litAs widget.Importance, enabled bool) {
		btn.Importance = widget.MediumImportance
		if lit {
			btn.Importance = litAs
		}
		if enabled {
			btn.Enable()
		} else {
			btn.Disable()
		}
		btn.Refresh()
	}
	light(a.rec, b.Record, widget.DangerImportance, !busy && b.RecordEnabled())
	light(a.play, b.Play, widget.SuccessImportance, !busy)
	light(a.stop, false, widget.HighImportance, !busy && st.Active())
	a.tray.update(st, b, busy)
}

func (a *App) Transport(st transport.State, b transport.Buttons) {
	a.mu.Lock()
	a.state, a.buttons = st, b
	a.mu.Unlock()
	a.wheel.SetRecording(st == transport.Recording)

	fyne.Do(func() {
		a.status.SetText(statusText(st))
		a.warn.Text = ""
		a.warn.Refresh()
		a.applyButtons()
		a.wheel.Refresh()
	})
}

func statusText(st transport.State) string {
	switch st {
	case transport.Recording:
		return "● REC"
	case transport.Paused:
		return "❚❚ PAUSED"
	case transport.Armed:
		return "▶ PLAYING"
	case transport.Stopped:
		return "■ STOPPED"
	}
	return "STANDBY"
}

func (a *App) Angle(deg float64) {
	a.wheel.SetAngle(deg)
	fyne.Do(a.wheel.Refresh)
}

func (a *App) Levels(left, right float64) {
	a.meter.SetLevels(left, right)
	fyne.Do(a.meter.Refresh)
}

func (a *App) Elapsed(text string, tint transport.Tint) {
	fyne.Do(func() {
		a.elapsed.Text = text
		a.elapsed.Color = colorNeutral
		if tint == transport.TintRecording {
			a.elapsed.Color = colorRecording
		}
		a.elapsed.Refresh()
	})
}

func (a *App) Notice(err error) {
	fyne.Do(func() {
		a.warn.Text = err.Error()
		a.warn.Refresh()
	})
}

func (a *App) Flash(b transport.Button) {
	if b != transport.ButtonStop {
		return
	}
	fyne.Do(func() {
		a.stop.Importance = widget.HighImportance
		a.stop.Refresh()
	})
	time.AfterFunc(flashDuration, func() { fyne.Do(a.applyButtons) })
}

func (a *App) Busy(on bool) {
	a.mu.Lock()
	a.busy = on
	a.mu.Unlock()
	fyne.Do(a.applyButtons)
}

func (a *App) NoSignal(warn bool) {
	fyne.Do(func() {
		a.warn.Text = ""
		if warn {
			a.warn.Text = "⚠ no signal"
		}
		a.warn.Refresh()
	})
}

func (a *App) Imported(path string, info encoder.Info) {
	text := fmt.Sprintf("Imported %s (%s, %d Hz, %d ch, %s)",
		filepath.Base(path), info.Format, info.SampleRate, info.Channels,
		info.Duration().Round(time.Second))
	fyne.Do(func() { a.info.SetText(text) })
}

func (a *App) Exported(location string) {
	fyne.Do(func() { a.info.SetText("Exported to " + location) })
}
