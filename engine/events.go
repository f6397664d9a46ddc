package engine

// Event is delivered on a recorder's Events channel.
type Event interface {
	isEvent()
}

// Finished is sent once per Stop after the capture file has been finalized.
// Err is set when finalizing failed.
type Finished struct {
	Path    string
	Success bool
	Err     error
}

// EncodeError reports a failure writing captured audio. Capture continues.
type EncodeError struct {
	Err error
}

func (Finished) isEvent()    {}
func (EncodeError) isEvent() {}

const eventBuffer = 16

func emit(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
