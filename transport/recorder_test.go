package transport

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hapticrec/audio"
	"hapticrec/engine"
	"hapticrec/haptic"
	"hapticrec/loop"
	"hapticrec/picker"
)

// recorderHarness runs the machine over the real engine.Recorder.
type recorderHarness struct {
	m     *Machine
	rec   *engine.Recorder
	sched *loop.Manual
	pick  *picker.Fake
	sink  *recordSink
	dir   string
}

func newRecorderHarness(t *testing.T, actx audio.Context) *recorderHarness {
	t.Helper()
	h := &recorderHarness{
		rec:   engine.NewRecorder(actx, nil),
		sched: loop.NewManual(),
		pick:  picker.NewFake(),
		sink:  &recordSink{},
		dir:   t.TempDir(),
	}
	opts := DefaultOptions()
	opts.CaptureDir = h.dir
	h.m = NewMachine(Deps{
		Scheduler: h.sched,
		Engine:    h.rec,
		Haptics:   &haptic.Fake{},
		Picker:    h.pick,
		Sink:      h.sink,
	}, opts)
	t.Cleanup(func() {
		h.m.Close()
		h.rec.Close()
	})
	return h
}

// deliverEvents hands queued recorder events to the machine as the app's
// forwarding goroutine would.
func (h *recorderHarness) deliverEvents() {
	for {
		select {
		case ev := <-h.rec.Events():
			h.m.HandleEngineEvent(ev)
		default:
			return
		}
	}
}

func (h *recorderHarness) captureFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

type fullDisk struct {
	*os.File
}

func (fullDisk) Seek(int64, int) (int64, error) {
	return 0, errors.New("no space left on device")
}

func TestStopWithFailedFinalizeLeavesSessionUsable(t *testing.T) {
	h := newRecorderHarness(t, audio.NewFakeContext(0.5, 0.5, false))
	h.rec.Create = func(name string) (io.WriteSeeker, error) {
		f, err := os.Create(name)
		return fullDisk{f}, err
	}

	require.NoError(t, h.m.OnPlayPressed())
	require.NoError(t, h.m.OnRecordPressed())
	require.NoError(t, h.m.OnStopPressed())
	assert.Equal(t, Stopped, h.m.Session().State)
	assert.True(t, h.m.rotation.Idle())
	assert.Equal(t, engine.StatusIdle, h.rec.Status())

	h.deliverEvents()
	require.Len(t, h.sink.notices, 1)
	var engErr *EngineError
	require.ErrorAs(t, h.sink.notices[0], &engErr)
	assert.Equal(t, engine.OpStop, engErr.Op)
	assert.ErrorContains(t, engErr, "no space left on device")

	require.True(t, h.pick.Cancel())
	require.True(t, h.sched.Await(time.Second))
	assert.False(t, h.m.Session().Latched)

	require.NoError(t, h.m.OnPlayPressed())
	require.NoError(t, h.m.OnRecordPressed())
	assert.Equal(t, Recording, h.m.Session().State)
	require.NoError(t, h.m.OnStopPressed())
	assert.Equal(t, Stopped, h.m.Session().State)
}

func TestFailedStartDiscardsPreparedCapture(t *testing.T) {
	actx := audio.NewFakeContext(0.5, 0.5, false)
	actx.StartErr = errors.New("device busy")
	h := newRecorderHarness(t, actx)

	require.NoError(t, h.m.OnPlayPressed())
	var engErr *EngineError
	require.ErrorAs(t, h.m.OnRecordPressed(), &engErr)
	assert.Equal(t, engine.OpStart, engErr.Op)
	assert.Equal(t, Armed, h.m.Session().State)
	assert.Equal(t, engine.StatusIdle, h.rec.Status())
	assert.Empty(t, h.captureFiles(t))

	require.NoError(t, h.m.OnStopPressed())
	h.m.Close()
	require.NoError(t, h.rec.Close())
	assert.Empty(t, h.captureFiles(t), "no header-only file left behind")
	assert.Empty(t, h.pick.Exports())
}
