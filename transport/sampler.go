package transport

import (
	"time"

	"hapticrec/loop"
)

const DefaultSamplePeriod = 50 * time.Millisecond

// PowerSource reports per-channel power in dB.
type PowerSource interface {
	CurrentPower(channel int) float64
}

// Sampler polls the engine and feeds the meter. While recording it also
// watches for a dead input.
type Sampler struct {
	s       *Session
	sched   loop.Scheduler
	sink    Sink
	src     PowerSource
	meter   *Meter
	silence *silenceMonitor
	period  time.Duration
	cancel  func()
}

func NewSampler(s *Session, sched loop.Scheduler, sink Sink, src PowerSource, meter *Meter, period time.Duration) *Sampler {
	return &Sampler{
		s:       s,
		sched:   sched,
		sink:    sink,
		src:     src,
		meter:   meter,
		silence: newSilenceMonitor(period),
		period:  period,
	}
}

func (p *Sampler) Start() {
	if p.cancel != nil {
		return
	}
	p.cancel = p.sched.Every(p.period, p.sample)
}

// Stop cancels polling and drops the meter to zero.
func (p *Sampler) Stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.publish(0, 0)
	p.resetSilence()
}

func (p *Sampler) Running() bool { return p.cancel != nil }

func (p *Sampler) sample() {
	left := Level(p.src.CurrentPower(0))
	right := Level(p.src.CurrentPower(1))
	p.publish(left, right)

	if p.s.State != Recording {
		p.resetSilence()
		return
	}
	switch p.silence.Tick(left > signalFloor || right > signalFloor) {
	case SilenceWarn:
		p.s.NoSignal = true
		p.sink.NoSignal(true)
	case SilenceClear:
		p.s.NoSignal = false
		p.sink.NoSignal(false)
	}
}

func (p *Sampler) publish(left, right float64) {
	p.meter.Set(left, right)
	p.s.Levels = [2]float64{left, right}
	p.sink.Levels(left, right)
}

func (p *Sampler) resetSilence() {
	p.silence.Reset()
	if p.s.NoSignal {
		p.s.NoSignal = false
		p.sink.NoSignal(false)
	}
}
