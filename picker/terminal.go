package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hapticrec/clipboard"
	"hapticrec/log"
)

// Terminal presents pickers as raw-mode lists on the controlling terminal.
// Suspend and Resume hand the terminal over from and back to a running TUI.
type Terminal struct {
	Dirs      []string
	ImportDir string
	Clipboard bool

	Suspend func() error
	Resume  func() error

	// In and Out default to the process's stdin and stdout.
	In  *os.File
	Out io.Writer
}

type exportTarget struct {
	label string
	run   func(artifact string) (string, error)
}

func (t *Terminal) exportTargets() []exportTarget {
	var targets []exportTarget
	for _, dir := range t.Dirs {
		targets = append(targets, exportTarget{
			label: "Save to " + dir,
			run:   func(a string) (string, error) { return MoveTo(a, dir) },
		})
	}
	if t.Clipboard && clipboard.Supported() {
		targets = append(targets, exportTarget{
			label: "Copy path to clipboard",
			run:   clipboard.CopyPath,
		})
	}
	targets = append(targets, exportTarget{
		label: "Keep where it is",
		run:   func(a string) (string, error) { return a, nil },
	})
	return targets
}

func (t *Terminal) PresentExport(ctx context.Context, artifact string) <-chan Outcome {
	targets := t.exportTargets()
	labels := make([]string, len(targets))
	for i, tg := range targets {
		labels[i] = tg.label
	}
	title := "Export " + filepath.Base(artifact)
	return t.present(ctx, title, labels, func(i int) Outcome {
		loc, err := targets[i].run(artifact)
		if err != nil {
			return Failed(err)
		}
		return Completed(loc)
	})
}

func (t *Terminal) PresentImport(ctx context.Context, kinds []string) <-chan Outcome {
	files, err := Candidates(t.ImportDir, kinds)
	if err != nil {
		return deliver(Failed(fmt.Errorf("listing %s: %w", t.ImportDir, err)))
	}
	if len(files) == 0 {
		return deliver(Failed(fmt.Errorf("no %v files in %s", kinds, t.ImportDir)))
	}
	labels := make([]string, len(files))
	for i, f := range files {
		labels[i] = filepath.Base(f)
	}
	return t.present(ctx, "Import audio", labels, func(i int) Outcome {
		return Completed(files[i])
	})
}

func (t *Terminal) streams() (*os.File, io.Writer) {
	in, out := t.In, t.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return in, out
}

func (t *Terminal) present(ctx context.Context, title string, labels []string, pick func(int) Outcome) <-chan Outcome {
	out := make(chan Outcome, 1)
	chosen := make(chan Outcome, 1)

	go func() {
		if t.Suspend != nil {
			if err := t.Suspend(); err != nil {
				chosen <- Failed(err)
				return
			}
		}
		in, w := t.streams()
		i, err := Choose(int(in.Fd()), in, w, title, labels)
		if t.Resume != nil {
			if rerr := t.Resume(); rerr != nil {
				log.Warnf("restoring terminal after %q: %v", title, rerr)
			}
		}
		switch {
		case errors.Is(err, ErrCancelled):
			chosen <- Cancelled()
		case err != nil:
			chosen <- Failed(err)
		default:
			chosen <- pick(i)
		}
	}()

	go func() {
		select {
		case o := <-chosen:
			out <- o
		case <-ctx.Done():
			out <- Cancelled()
		}
	}()
	return out
}
