// Package hotkey delivers a global Ctrl+Shift+Space press that toggles
// recording while the terminal is not focused.
package hotkey

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
)

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
}

// Linux input event codes.
const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyLCtrl   = 29
	keyRCtrl   = 97
	keyLShift  = 42
	keyRShift  = 54
	keySpace   = 57
)

// chord tracks modifier state across raw key events. Holding space does
// not repeat.
type chord struct {
	ctrl, shift, space bool
}

// feed consumes one event and reports whether it completed the chord.
func (c *chord) feed(evType, code uint16, value int32) bool {
	if evType != evKey {
		return false
	}
	pressed := value == keyPress
	released := value == keyRelease

	switch code {
	case keyLCtrl, keyRCtrl:
		c.ctrl = pressed || (!released && c.ctrl)
	case keyLShift, keyRShift:
		c.shift = pressed || (!released && c.shift)
	case keySpace:
		if pressed && !c.space && c.ctrl && c.shift {
			c.space = true
			return true
		}
		if released {
			c.space = false
		}
	}
	return false
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// inputEventSize is sizeof(struct input_event) on 64-bit kernels.
const inputEventSize = 24

type inputEvent struct {
	typ   uint16
	code  uint16
	value int32
}

// decodeEvents splits a read from an evdev node into events. A trailing
// partial event is ignored.
func decodeEvents(buf []byte) []inputEvent {
	events := make([]inputEvent, 0, len(buf)/inputEventSize)
	for i := 0; i+inputEventSize <= len(buf); i += inputEventSize {
		events = append(events, inputEvent{
			typ:   binary.LittleEndian.Uint16(buf[i+16:]),
			code:  binary.LittleEndian.Uint16(buf[i+18:]),
			value: int32(binary.LittleEndian.Uint32(buf[i+20:])),
		})
	}
	return events
}

// keyboards lists event nodes under inputDir whose key capability bitmap
// in sysDir is wide enough to be a real keyboard rather than a power
// button or lid switch.
func keyboards(inputDir, sysDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "event") {
			continue
		}
		caps, err := os.ReadFile(filepath.Join(sysDir, name, "device", "capabilities", "key"))
		if err != nil {
			continue
		}
		if len(strings.TrimSpace(string(caps))) > 10 {
			paths = append(paths, filepath.Join(inputDir, name))
		}
	}
	return paths, nil
}
