//go:build gui

package gui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"hapticrec/transport"
)

const (
	segmentW = 12
	segmentH = 10
	rowGap   = 4
)

// MeterWidget is two rows of segments, left channel on top.
type MeterWidget struct {
	widget.BaseWidget
	n int

	mu     sync.Mutex
	levels [2]float64
}

func NewMeterWidget(segments int) *MeterWidget {
	m := &MeterWidget{n: segments}
	m.ExtendBaseWidget(m)
	return m
}

func (m *MeterWidget) SetLevels(left, right float64) {
	m.mu.Lock()
	m.levels = [2]float64{left, right}
	m.mu.Unlock()
}

func (m *MeterWidget) MinSize() fyne.Size {
	return fyne.NewSize(float32(m.n*segmentW), 2*segmentH+rowGap)
}

// segmentColor ramps green, then yellow from 60%, then red from 85%.
func segmentColor(i, n int) color.Color {
	pos := float64(i) / float64(n)
	switch {
	case pos >= 0.85:
		return colorRecording
	case pos >= 0.6:
		return colorMid
	}
	return colorLow
}

func (m *MeterWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &meterRenderer{meter: m}
	for ch := range r.rects {
		r.rects[ch] = make([]*canvas.Rectangle, m.n)
		for i := range r.rects[ch] {
			r.rects[ch][i] = canvas.NewRectangle(colorUnlit)
		}
	}
	return r
}

type meterRenderer struct {
	meter *MeterWidget
	rects [2][]*canvas.Rectangle
}

func (r *meterRenderer) Layout(size fyne.Size) {
	cellW := size.Width / float32(r.meter.n)
	for ch := range r.rects {
		y := float32(ch) * (segmentH + rowGap)
		for i, rect := range r.rects[ch] {
			rect.Move(fyne.NewPos(float32(i)*cellW, y))
			rect.Resize(fyne.NewSize(cellW-1, segmentH))
		}
	}
}

func (r *meterRenderer) MinSize() fyne.Size {
	return r.meter.MinSize()
}

func (r *meterRenderer) Refresh() {
	r.meter.mu.Lock()
	levels := r.meter.levels
	r.meter.mu.Unlock()

	for ch := range r.rects {
		lit := transport.LitSegments(levels[ch], r.meter.n)
		for i, rect := range r.rects[ch] {
			if i < lit {
				rect.FillColor = segmentColor(i, r.meter.n)
			} else {
				rect.FillColor = colorUnlit
			}
			rect.Refresh()
		}
	}
}

func (r *meterRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, 2*r.meter.n)
	for ch := range r.rects {
		for _, rect := range r.rects[ch] {
			objs = append(objs, rect)
		}
	}
	return objs
}

func (r *meterRenderer) Destroy() {}
