package transport

import (
	"fmt"
	"time"

	"hapticrec/loop"
)

// Tint is the color signal of the elapsed readout.
type Tint int

const (
	TintNeutral Tint = iota
	TintRecording
)

// TintFor is recording only while the timer runs.
func TintFor(running, paused bool) Tint {
	if running {
		return TintRecording
	}
	return TintNeutral
}

func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// ElapsedTimer counts whole seconds of recording.
type ElapsedTimer struct {
	s      *Session
	sched  loop.Scheduler
	sink   Sink
	cancel func()
	paused bool
}

func NewElapsedTimer(s *Session, sched loop.Scheduler, sink Sink) *ElapsedTimer {
	return &ElapsedTimer{s: s, sched: sched, sink: sink}
}

func (e *ElapsedTimer) Start() {
	if e.cancel != nil {
		return
	}
	e.cancel = e.sched.Every(time.Second, e.tick)
	e.paused = false
	e.publish()
}

// Stop freezes the count.
func (e *ElapsedTimer) Stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	e.cancel = nil
	e.paused = true
	e.publish()
}

func (e *ElapsedTimer) Reset() {
	e.s.Elapsed = 0
	e.paused = false
	e.publish()
}

func (e *ElapsedTimer) Running() bool { return e.cancel != nil }

func (e *ElapsedTimer) Text() string { return FormatElapsed(e.s.Elapsed) }

func (e *ElapsedTimer) tick() {
	e.s.Elapsed++
	e.publish()
}

func (e *ElapsedTimer) publish() {
	e.sink.Elapsed(e.Text(), TintFor(e.Running(), e.paused))
}
