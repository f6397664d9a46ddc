package transport

import "hapticrec/encoder"

// Sink receives everything the view needs to redraw. Calls are made from
// the scheduler goroutine, so an implementation may block only briefly and
// must bound any wait. Angle and Levels arrive at tick rate and should be
// dropped rather than queued when the view falls behind.
type Sink interface {
	Transport(state State, buttons Buttons)
	Angle(degrees float64)
	Levels(left, right float64)
	Elapsed(text string, tint Tint)
	Notice(err error)
	Flash(b Button)
	Busy(latched bool)
	NoSignal(warn bool)
	Imported(path string, info encoder.Info)
	Exported(location string)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Transport(State, Buttons)      {}
func (NopSink) Angle(float64)                 {}
func (NopSink) Levels(float64, float64)       {}
func (NopSink) Elapsed(string, Tint)          {}
func (NopSink) Notice(error)                  {}
func (NopSink) Flash(Button)                  {}
func (NopSink) Busy(bool)                     {}
func (NopSink) NoSignal(bool)                 {}
func (NopSink) Imported(string, encoder.Info) {}
func (NopSink) Exported(string)               {}
