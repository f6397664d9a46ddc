// Package picker presents export and import destinations and reports the
// user's choice asynchronously.
package picker

import (
	"context"
	"errors"
)

var ErrNoTargets = errors.New("no export targets configured")

// Outcome is the result of a picker. Exactly one of Location, Cancelled or
// Err is meaningful.
type Outcome struct {
	Location  string
	Cancelled bool
	Err       error
}

func Completed(location string) Outcome { return Outcome{Location: location} }
func Cancelled() Outcome                { return Outcome{Cancelled: true} }
func Failed(err error) Outcome          { return Outcome{Err: err} }

// Picker shows a chooser and delivers exactly one Outcome on the returned
// channel. Cancelling ctx dismisses the chooser with a Cancelled outcome.
type Picker interface {
	PresentExport(ctx context.Context, artifact string) <-chan Outcome
	PresentImport(ctx context.Context, kinds []string) <-chan Outcome
}

func deliver(o Outcome) <-chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- o
	return ch
}
