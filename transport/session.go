package transport

import (
	"github.com/google/uuid"
)

// Session is the state shared by the transport components for one screen
// lifetime. It is only touched from the scheduler goroutine.
type Session struct {
	ID      string
	State   State
	Buttons Buttons

	Angle    float64
	Spinning bool
	Dragging bool

	Levels   [2]float64
	NoSignal bool

	Elapsed int

	// Latched is set while an export or import picker is open.
	Latched bool

	Capture  string
	HasAudio bool
	Imported string
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}
