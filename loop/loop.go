// Package loop runs closures serially on one goroutine so that session state
// needs no locking, and provides periodic timers that fire onto it.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler is what components use to register timers and continuations.
// Callbacks always run on the scheduler's goroutine.
type Scheduler interface {
	// Every runs fn each period until the returned cancel is called. A
	// cancelled timer never runs again, even if a tick is already queued.
	Every(period time.Duration, fn func()) (cancel func())
	// Post queues fn. It reports false if the scheduler has shut down.
	Post(fn func()) bool
}

const queueSize = 256

type Loop struct {
	clk   clock.Clock
	tasks chan func()

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func New(clk clock.Clock) *Loop {
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		clk:   clk,
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

func (l *Loop) Clock() clock.Clock { return l.clk }

// Run executes posted closures until ctx ends or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it to return. It must not be
// called from the loop goroutine.
func (l *Loop) Call(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) Every(period time.Duration, fn func()) func() {
	var cancelled, pending atomic.Bool
	stop := make(chan struct{})
	ticker := l.clk.Ticker(period)

	tick := func() {
		pending.Store(false)
		if !cancelled.Load() {
			fn()
		}
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				// Ticks coalesce while one is still queued.
				if !pending.CompareAndSwap(false, true) {
					continue
				}
				if !l.Post(tick) {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelled.Store(true)
			close(stop)
		})
	}
}

// Close stops the loop and all of its timers. Queued closures are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
}
