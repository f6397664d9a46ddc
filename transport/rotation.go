package transport

import (
	"math"
	"time"

	"hapticrec/loop"
)

const (
	DefaultRotationPeriod = 10 * time.Millisecond
	DefaultRotationStep   = 1.0
	DefaultVelocityScale  = 275.0
)

// Haptics renders tactile feedback.
type Haptics interface {
	Pulse()
	PulseIntensity(intensity float64)
}

type nopHaptics struct{}

func (nopHaptics) Pulse()                 {}
func (nopHaptics) PulseIntensity(float64) {}

// Rotation drives the wheel angle, either from its own ticker or from a
// drag gesture. Never both.
type Rotation struct {
	s       *Session
	sched   loop.Scheduler
	sink    Sink
	haptics Haptics

	period        time.Duration
	step          float64
	velocityScale float64

	cancel func()
}

func NewRotation(s *Session, sched loop.Scheduler, sink Sink, h Haptics, period time.Duration, step, velocityScale float64) *Rotation {
	return &Rotation{
		s:             s,
		sched:         sched,
		sink:          sink,
		haptics:       h,
		period:        period,
		step:          step,
		velocityScale: velocityScale,
	}
}

// Start begins ticking. It is a no-op while ticking or dragging.
func (r *Rotation) Start() {
	if r.cancel != nil || r.s.Dragging {
		return
	}
	r.cancel = r.sched.Every(r.period, r.tick)
	r.s.Spinning = true
}

func (r *Rotation) Stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.s.Spinning = false
}

// Idle reports whether neither the ticker nor a drag is driving the wheel.
func (r *Rotation) Idle() bool {
	return !r.s.Spinning && !r.s.Dragging
}

func (r *Rotation) tick() {
	if r.s.Latched {
		return
	}
	r.setAngle(r.s.Angle + r.step)
}

func (r *Rotation) DragBegin(vx float64) {
	r.Stop()
	r.s.Dragging = true
	r.haptics.PulseIntensity(DragIntensity(vx, r.velocityScale))
}

func (r *Rotation) DragMove(dx, width, vx float64) {
	if !r.s.Dragging || width <= 0 {
		return
	}
	r.setAngle(r.s.Angle + dx/width*360)
	r.haptics.PulseIntensity(DragIntensity(vx, r.velocityScale))
}

// DragEnd hands the wheel back to the ticker when resume is set.
func (r *Rotation) DragEnd(resume bool) {
	r.s.Dragging = false
	if resume {
		r.Start()
	}
}

func (r *Rotation) setAngle(deg float64) {
	r.s.Angle = Wrap(deg)
	r.sink.Angle(r.s.Angle)
}

// Wrap maps any angle into [0,360).
func Wrap(deg float64) float64 {
	w := math.Mod(deg, 360)
	if w < 0 {
		w += 360
	}
	if w >= 360 {
		w = 0
	}
	return w
}

// DragIntensity maps a horizontal gesture velocity to a haptic intensity.
func DragIntensity(vx, scale float64) float64 {
	if scale <= 0 {
		return 1
	}
	return clamp01(math.Abs(vx) / scale)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
