//go:build linux

package hotkey

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

const (
	inputDir = "/dev/input"
	sysDir   = "/sys/class/input"
)

var errNoKeyboards = errors.New("no keyboard devices found (is user in 'input' group?)")

// evdevHotkey reads every keyboard under /dev/input, so it works without
// a display server. The user needs to be in the input group.
type evdevHotkey struct {
	keydown chan struct{}
	files   []*os.File
	stop    chan struct{}
	once    sync.Once
}

func New() Hotkey {
	return &evdevHotkey{keydown: make(chan struct{}, 1)}
}

func (h *evdevHotkey) Register() error {
	paths, err := keyboards(inputDir, sysDir)
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(paths) == 0 {
		return errNoKeyboards
	}

	h.stop = make(chan struct{})
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.watch(f)
	}
	if len(h.files) == 0 {
		return fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER, then re-login)", len(paths))
	}
	return nil
}

// watch exits when f is closed by Unregister.
func (h *evdevHotkey) watch(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	var c chord
	for {
		n, err := f.Read(buf)
		if err != nil {
			return
		}
		select {
		case <-h.stop:
			return
		default:
		}
		for _, ev := range decodeEvents(buf[:n]) {
			if c.feed(ev.typ, ev.code, ev.value) {
				notify(h.keydown)
			}
		}
	}
}

func (h *evdevHotkey) Unregister() {
	h.once.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *evdevHotkey) Keydown() <-chan struct{} {
	return h.keydown
}
