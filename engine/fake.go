package engine

import (
	"errors"
	"sync"
)

// Fake is an in-memory engine with the same transition rules as Recorder.
// Failures can be injected per operation.
type Fake struct {
	mu      sync.Mutex
	status  Status
	dest    string
	power   [2]float64
	fail    map[Op]error
	calls   []Op
	prepped []string
	events  chan Event
}

func NewFake() *Fake {
	return &Fake{
		power:  [2]float64{MinPower, MinPower},
		fail:   make(map[Op]error),
		events: make(chan Event, eventBuffer),
	}
}

func (f *Fake) Events() <-chan Event { return f.events }

// FailNext makes the next call of op return err without changing state.
func (f *Fake) FailNext(op Op, err error) {
	f.mu.Lock()
	f.fail[op] = err
	f.mu.Unlock()
}

// SetPower sets the dB readings reported while recording.
func (f *Fake) SetPower(left, right float64) {
	f.mu.Lock()
	f.power = [2]float64{left, right}
	f.mu.Unlock()
}

// Emit delivers ev on the Events channel as a real recorder would.
func (f *Fake) Emit(ev Event) {
	emit(f.events, ev)
}

func (f *Fake) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Calls returns every operation attempted, including rejected ones.
func (f *Fake) Calls() []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Op(nil), f.calls...)
}

// Prepared returns every destination passed to a successful Prepare.
func (f *Fake) Prepared() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prepped...)
}

func (f *Fake) do(op Op) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if err, ok := f.fail[op]; ok {
		delete(f.fail, op)
		return f.status, err
	}
	next, err := checkTransition(op, f.status)
	if err != nil {
		return f.status, err
	}
	f.status = next
	return next, nil
}

func (f *Fake) Prepare(dest string, _, _ int, _ string) error {
	if _, err := f.do(OpPrepare); err != nil {
		return err
	}
	f.mu.Lock()
	f.dest = dest
	f.prepped = append(f.prepped, dest)
	f.mu.Unlock()
	return nil
}

func (f *Fake) Start() error {
	_, err := f.do(OpStart)
	return err
}

func (f *Fake) Pause() error {
	_, err := f.do(OpPause)
	return err
}

func (f *Fake) Resume() error {
	_, err := f.do(OpResume)
	return err
}

func (f *Fake) Stop() error {
	if _, err := f.do(OpStop); err != nil {
		return err
	}
	f.mu.Lock()
	dest := f.dest
	f.dest = ""
	f.mu.Unlock()
	emit(f.events, Finished{Path: dest, Success: true})
	return nil
}

func (f *Fake) Discard() error {
	if _, err := f.do(OpDiscard); err != nil {
		return err
	}
	f.mu.Lock()
	f.dest = ""
	f.mu.Unlock()
	return nil
}

func (f *Fake) CurrentPower(channel int) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != StatusRecording || channel < 0 || channel > 1 {
		return MinPower
	}
	return f.power[channel]
}

func (f *Fake) Close() error {
	err := f.Stop()
	if errors.Is(err, ErrNotInitialized) {
		return nil
	}
	return err
}
