//go:build gui

package gui

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hapticrec/transport"
)

type recordingController struct {
	calls  []string
	begins []float64
	moves  [][3]float64
}

func (c *recordingController) Play()      { c.calls = append(c.calls, "play") }
func (c *recordingController) Record()    { c.calls = append(c.calls, "record") }
func (c *recordingController) Stop()      { c.calls = append(c.calls, "stop") }
func (c *recordingController) DoubleTap() { c.calls = append(c.calls, "dtap") }
func (c *recordingController) DragEnd()   { c.calls = append(c.calls, "end") }
func (c *recordingController) DragBegin(vx float64) {
	c.calls = append(c.calls, "begin")
	c.begins = append(c.begins, vx)
}
func (c *recordingController) DragMove(dx, width, vx float64) {
	c.calls = append(c.calls, "move")
	c.moves = append(c.moves, [3]float64{dx, width, vx})
}

func TestWheelDrag(t *testing.T) {
	test.NewTempApp(t)
	ctl := &recordingController{}
	w := NewWheelWidget(ctl)
	w.Resize(fyne.NewSize(200, 200))

	clock := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	w.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 10}})
	clock = clock.Add(100 * time.Millisecond)
	w.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 20}})
	w.DragEnd()
	w.DragEnd()

	assert.Equal(t, []string{"begin", "move", "move", "end"}, ctl.calls)
	require.Len(t, ctl.moves, 2)
	assert.Equal(t, [2]float64{10, 200}, [2]float64{ctl.moves[0][0], ctl.moves[0][1]})
	assert.InDelta(t, 600, ctl.moves[0][2], 0.001)
	assert.InDelta(t, 200, ctl.moves[1][2], 0.001)

	require.Len(t, ctl.begins, 1)
	assert.InDelta(t, 600, ctl.begins[0], 0.001)
	assert.Greater(t, transport.DragIntensity(ctl.begins[0], transport.DefaultVelocityScale), 0.0,
		"opening pulse is not silent")
}

func TestWheelDoubleTap(t *testing.T) {
	ctl := &recordingController{}
	w := NewWheelWidget(ctl)
	w.DoubleTapped(&fyne.PointEvent{})
	assert.Equal(t, []string{"dtap"}, ctl.calls)
}

func TestMarkerCenter(t *testing.T) {
	size := fyne.NewSize(200, 200)

	top := markerCenter(size, 0)
	assert.InDelta(t, 100, top.X, 0.01)
	assert.InDelta(t, 100-(100-markerSize), top.Y, 0.01)

	right := markerCenter(size, 90)
	assert.InDelta(t, 100+(100-markerSize), right.X, 0.01)
	assert.InDelta(t, 100, right.Y, 0.01)
}

func TestSegmentColorRamp(t *testing.T) {
	assert.Equal(t, colorLow, segmentColor(0, transport.DefaultSegments))
	assert.Equal(t, colorMid, segmentColor(12, transport.DefaultSegments))
	assert.Equal(t, colorRecording, segmentColor(19, transport.DefaultSegments))
}
