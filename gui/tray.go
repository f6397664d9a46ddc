//go:build gui

package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"hapticrec/transport"
)

// tray mirrors the transport controls in the system tray where the
// driver supports one.
type tray struct {
	desk desktop.App
	menu *fyne.Menu

	status, play, rec, stop *fyne.MenuItem
}

func newTray(a *App) *tray {
	desk, ok := a.fyneApp.(desktop.App)
	if !ok {
		return nil
	}
	t := &tray{desk: desk}
	t.status = fyne.NewMenuItem(statusText(transport.Idle), nil)
	t.status.Disabled = true
	t.play = fyne.NewMenuItem("Play", a.Play)
	t.rec = fyne.NewMenuItem("Record", a.Record)
	t.stop = fyne.NewMenuItem("Stop", a.Stop)
	show := fyne.NewMenuItem("Show window", func() {
		a.window.Show()
		a.window.RequestFocus()
	})
	t.menu = fyne.NewMenu("hapticrec",
		t.status,
		fyne.NewMenuItemSeparator(),
		t.play, t.rec, t.stop,
		fyne.NewMenuItemSeparator(),
		show,
	)
	desk.SetSystemTrayMenu(t.menu)
	desk.SetSystemTrayIcon(theme.MediaRecordIcon())
	return t
}

// update must run on the fyne thread.
func (t *tray) update(st transport.State, b transport.Buttons, busy bool) {
	if t == nil {
		return
	}
	t.status.Label = statusText(st)
	t.play.Checked = b.Play
	t.rec.Checked = b.Record
	t.play.Disabled = busy
	t.rec.Disabled = busy || !b.RecordEnabled()
	t.stop.Disabled = busy || !st.Active()
	t.menu.Refresh()
}
