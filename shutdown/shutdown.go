// Package shutdown ties a context to the process termination signals.
package shutdown

import (
	"context"
	"os"
	"os/signal"
)

// Context is cancelled on the first termination signal. A second signal
// kills the process as usual once stop has been called.
func Context(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

func Notify(ch chan os.Signal) {
	signal.Notify(ch, signals...)
}
