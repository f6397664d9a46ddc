//go:build gui

package gui

import (
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	wheelSize  = 220
	markerSize = 18

	// firstDragFrame is the interval assumed for the first drag delta, which
	// arrives without an earlier event to time it against.
	firstDragFrame = time.Second / 60
)

// Controller is what the window can ask of the session.
type Controller interface {
	Play()
	Record()
	Stop()
	DoubleTap()
	DragBegin(vx float64)
	DragMove(dx, width, vx float64)
	DragEnd()
}

// WheelWidget draws the transport wheel and turns pointer drags and
// double taps into controller calls.
type WheelWidget struct {
	widget.BaseWidget
	ctl Controller
	now func() time.Time

	mu        sync.Mutex
	angle     float64
	recording bool

	dragging bool
	lastMove time.Time
}

func NewWheelWidget(ctl Controller) *WheelWidget {
	w := &WheelWidget{ctl: ctl, now: time.Now}
	w.ExtendBaseWidget(w)
	return w
}

func (w *WheelWidget) SetAngle(deg float64) {
	w.mu.Lock()
	w.angle = deg
	w.mu.Unlock()
}

func (w *WheelWidget) SetRecording(r bool) {
	w.mu.Lock()
	w.recording = r
	w.mu.Unlock()
}

func (w *WheelWidget) Dragged(ev *fyne.DragEvent) {
	now := w.now()
	dx := float64(ev.Dragged.DX)
	if !w.dragging {
		w.dragging = true
		w.lastMove = now.Add(-firstDragFrame)
		w.ctl.DragBegin(dx / firstDragFrame.Seconds())
	}
	var vx float64
	if dt := now.Sub(w.lastMove).Seconds(); dt > 0 {
		vx = dx / dt
	}
	w.lastMove = now
	w.ctl.DragMove(dx, float64(w.Size().Width), vx)
}

func (w *WheelWidget) DragEnd() {
	if !w.dragging {
		return
	}
	w.dragging = false
	w.ctl.DragEnd()
}

func (w *WheelWidget) DoubleTapped(*fyne.PointEvent) {
	w.ctl.DoubleTap()
}

func (w *WheelWidget) MinSize() fyne.Size {
	return fyne.NewSize(wheelSize, wheelSize)
}

func (w *WheelWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &wheelRenderer{
		wheel:  w,
		rim:    canvas.NewCircle(colorUnlit),
		spoke:  canvas.NewLine(colorRim),
		hub:    canvas.NewCircle(colorRim),
		marker: canvas.NewCircle(colorNeutral),
	}
	r.rim.StrokeColor = colorRim
	r.rim.StrokeWidth = 3
	r.spoke.StrokeWidth = 2
	return r
}

type wheelRenderer struct {
	wheel  *WheelWidget
	size   fyne.Size
	rim    *canvas.Circle
	spoke  *canvas.Line
	hub    *canvas.Circle
	marker *canvas.Circle
}

// markerCenter is the marker position for angle degrees, clockwise from the top.
func markerCenter(size fyne.Size, angle float64) fyne.Position {
	cx, cy := size.Width/2, size.Height/2
	radius := float64(min(size.Width, size.Height))/2 - markerSize
	rad := angle * math.Pi / 180
	return fyne.NewPos(cx+float32(radius*math.Sin(rad)), cy-float32(radius*math.Cos(rad)))
}

func (r *wheelRenderer) Layout(size fyne.Size) {
	r.size = size
	d := min(size.Width, size.Height)
	r.rim.Resize(fyne.NewSize(d, d))
	r.rim.Move(fyne.NewPos((size.Width-d)/2, (size.Height-d)/2))
	r.hub.Resize(fyne.NewSize(8, 8))
	r.hub.Move(fyne.NewPos(size.Width/2-4, size.Height/2-4))
	r.place()
}

func (r *wheelRenderer) place() {
	r.wheel.mu.Lock()
	angle := r.wheel.angle
	recording := r.wheel.recording
	r.wheel.mu.Unlock()

	center := fyne.NewPos(r.size.Width/2, r.size.Height/2)
	m := markerCenter(r.size, angle)
	r.spoke.Position1 = center
	r.spoke.Position2 = m
	r.marker.Resize(fyne.NewSize(markerSize, markerSize))
	r.marker.Move(m.Subtract(fyne.NewPos(markerSize/2, markerSize/2)))
	if recording {
		r.marker.FillColor = colorRecording
	} else {
		r.marker.FillColor = colorNeutral
	}
}

func (r *wheelRenderer) MinSize() fyne.Size {
	return r.wheel.MinSize()
}

func (r *wheelRenderer) Refresh() {
	r.place()
	for _, o := range r.Objects() {
		o.Refresh()
	}
}

func (r *wheelRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.rim, r.spoke, r.hub, r.marker}
}

func (r *wheelRenderer) Destroy() {}
