package engine

type Status int

const (
	StatusIdle Status = iota
	StatusReady
	StatusRecording
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusReady:
		return "ready"
	case StatusRecording:
		return "recording"
	case StatusPaused:
		return "paused"
	}
	return "unknown"
}

type Op string

const (
	OpPrepare Op = "prepare"
	OpStart   Op = "start"
	OpPause   Op = "pause"
	OpResume  Op = "resume"
	OpStop    Op = "stop"
	OpDiscard Op = "discard"
	OpEncode  Op = "encode"
)

// checkTransition returns the status op leads to from s. Redundant calls
// yield ErrAlreadyInState, calls before Prepare yield ErrNotInitialized.
func checkTransition(op Op, s Status) (Status, error) {
	switch op {
	case OpPrepare:
		if s == StatusIdle || s == StatusReady {
			return StatusReady, nil
		}
		return s, ErrAlreadyInState
	case OpStop:
		if s == StatusIdle {
			return s, ErrNotInitialized
		}
		return StatusIdle, nil
	case OpDiscard:
		switch s {
		case StatusIdle:
			return s, ErrNotInitialized
		case StatusReady:
			return StatusIdle, nil
		}
		return s, ErrAlreadyInState
	}

	if s == StatusIdle {
		return s, ErrNotInitialized
	}
	switch {
	case op == OpStart && s == StatusReady:
		return StatusRecording, nil
	case op == OpPause && s == StatusRecording:
		return StatusPaused, nil
	case op == OpResume && s == StatusPaused:
		return StatusRecording, nil
	}
	return s, ErrAlreadyInState
}
