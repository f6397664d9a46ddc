//go:build gui

package gui

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"hapticrec/picker"
)

// Picker presents export and import as native file dialogs on the window.
type Picker struct {
	win       fyne.Window
	importDir string
}

// result delivers the first outcome only and hides the dialog when ctx
// ends first.
type result struct {
	out  chan picker.Outcome
	once sync.Once
	done chan struct{}
}

func newResult(ctx context.Context, hide func()) *result {
	r := &result{out: make(chan picker.Outcome, 1), done: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(hide)
			r.resolve(picker.Cancelled())
		case <-r.done:
		}
	}()
	return r
}

func (r *result) resolve(o picker.Outcome) {
	r.once.Do(func() {
		r.out <- o
		close(r.done)
	})
}

func (p *Picker) PresentExport(ctx context.Context, artifact string) <-chan picker.Outcome {
	var d *dialog.FileDialog
	r := newResult(ctx, func() {
		if d != nil {
			d.Hide()
		}
	})
	fyne.Do(func() {
		d = dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
			switch {
			case err != nil:
				r.resolve(picker.Failed(err))
			case dir == nil:
				r.resolve(picker.Cancelled())
			default:
				go func() {
					loc, err := picker.MoveTo(artifact, dir.Path())
					if err != nil {
						r.resolve(picker.Failed(err))
						return
					}
					r.resolve(picker.Completed(loc))
				}()
			}
		}, p.win)
		d.SetConfirmText("Export here")
		d.Show()
	})
	return r.out
}

func (p *Picker) PresentImport(ctx context.Context, kinds []string) <-chan picker.Outcome {
	var d *dialog.FileDialog
	r := newResult(ctx, func() {
		if d != nil {
			d.Hide()
		}
	})
	fyne.Do(func() {
		d = dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			switch {
			case err != nil:
				r.resolve(picker.Failed(err))
			case rc == nil:
				r.resolve(picker.Cancelled())
			default:
				path := rc.URI().Path()
				rc.Close()
				r.resolve(picker.Completed(path))
			}
		}, p.win)
		d.SetFilter(storage.NewExtensionFileFilter(kinds))
		if loc, err := storage.ListerForURI(storage.NewFileURI(p.importDir)); err == nil {
			d.SetLocation(loc)
		}
		d.Show()
	})
	return r.out
}
