package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hapticrec/encoder"
	"hapticrec/engine"
	"hapticrec/haptic"
	"hapticrec/loop"
	"hapticrec/picker"
)

type recordSink struct {
	state    State
	buttons  Buttons
	angle    float64
	levels   [2]float64
	elapsed  []string
	tint     Tint
	notices  []error
	flashes  []Button
	busy     []bool
	noSignal []bool
	imported string
	info     encoder.Info
	exported []string
}

func (r *recordSink) Transport(s State, b Buttons) { r.state, r.buttons = s, b }
func (r *recordSink) Angle(d float64)              { r.angle = d }
func (r *recordSink) Levels(l, rt float64)         { r.levels = [2]float64{l, rt} }
func (r *recordSink) Elapsed(text string, t Tint) {
	r.elapsed = append(r.elapsed, text)
	r.tint = t
}
func (r *recordSink) Notice(err error)   { r.notices = append(r.notices, err) }
func (r *recordSink) Flash(b Button)     { r.flashes = append(r.flashes, b) }
func (r *recordSink) Busy(on bool)       { r.busy = append(r.busy, on) }
func (r *recordSink) NoSignal(warn bool) { r.noSignal = append(r.noSignal, warn) }
func (r *recordSink) Imported(p string, i encoder.Info) {
	r.imported, r.info = p, i
}
func (r *recordSink) Exported(loc string) { r.exported = append(r.exported, loc) }

func (r *recordSink) lastElapsed() string {
	if len(r.elapsed) == 0 {
		return ""
	}
	return r.elapsed[len(r.elapsed)-1]
}

type harness struct {
	m     *Machine
	sched *loop.Manual
	eng   *engine.Fake
	pick  *picker.Fake
	hap   *haptic.Fake
	sink  *recordSink
	dir   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sched: loop.NewManual(),
		eng:   engine.NewFake(),
		pick:  picker.NewFake(),
		hap:   &haptic.Fake{},
		sink:  &recordSink{},
		dir:   t.TempDir(),
	}
	opts := DefaultOptions()
	opts.CaptureDir = h.dir
	opts.Now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }
	h.m = NewMachine(Deps{
		Scheduler: h.sched,
		Engine:    h.eng,
		Haptics:   h.hap,
		Picker:    h.pick,
		Sink:      h.sink,
	}, opts)
	t.Cleanup(h.m.Close)
	return h
}

// settle waits for a picker continuation to be posted and runs it.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	require.True(t, h.sched.Await(time.Second), "no continuation posted")
}

func (h *harness) state() State { return h.m.Session().State }
