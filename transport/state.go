package transport

// State is the transport position of a session.
type State int

const (
	Idle State = iota
	Armed
	Recording
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Armed:
		return "Armed"
	case Recording:
		return "Recording"
	case Paused:
		return "Paused"
	case Stopped:
		return "Stopped"
	}
	return "Unknown"
}

// Active reports whether play is engaged: Armed, Recording or Paused.
func (s State) Active() bool {
	return s == Armed || s == Recording || s == Paused
}

type Button int

const (
	ButtonRecord Button = iota
	ButtonPlay
	ButtonStop
)

func (b Button) String() string {
	switch b {
	case ButtonRecord:
		return "record"
	case ButtonPlay:
		return "play"
	case ButtonStop:
		return "stop"
	}
	return "unknown"
}

// Buttons is the lit state of the three transport controls.
type Buttons struct {
	Record bool
	Play   bool
	Stop   bool
}

// RecordEnabled reports whether the record control accepts presses.
func (b Buttons) RecordEnabled() bool {
	return b.Play || b.Stop
}

// FlagsFor derives the button flags for a state. The stop flag is never
// held; entering Stopped flashes it instead.
func FlagsFor(s State) Buttons {
	switch s {
	case Armed, Paused:
		return Buttons{Play: true}
	case Recording:
		return Buttons{Record: true, Play: true}
	}
	return Buttons{}
}
