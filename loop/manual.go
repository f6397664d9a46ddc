package loop

import (
	"sync"
	"time"
)

// Manual is a Scheduler whose time only moves when Advance is called.
// Everything runs on the caller's goroutine.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
	posted chan func()
}

type manualTimer struct {
	period    time.Duration
	next      time.Duration
	seq       int
	fn        func()
	cancelled bool
}

func NewManual() *Manual {
	return &Manual{posted: make(chan func(), queueSize)}
}

func (m *Manual) Every(period time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{period: period, next: m.now + period, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.cancelled = true
		for i, other := range m.timers {
			if other == t {
				m.timers = append(m.timers[:i], m.timers[i+1:]...)
				break
			}
		}
	}
}

// Post queues fn until the next Drain, Await or Advance. Safe from any goroutine.
func (m *Manual) Post(fn func()) bool {
	m.posted <- fn
	return true
}

// Drain runs every posted closure, including ones posted while draining.
func (m *Manual) Drain() {
	for {
		select {
		case fn := <-m.posted:
			fn()
		default:
			return
		}
	}
}

// Await blocks until something is posted, then drains. It reports false on timeout.
func (m *Manual) Await(timeout time.Duration) bool {
	select {
	case fn := <-m.posted:
		fn()
		m.Drain()
		return true
	case <-time.After(timeout):
		return false
	}
}

// Advance moves time forward by d, firing due timers in time order.
// Timers due at the same instant fire in registration order.
func (m *Manual) Advance(d time.Duration) {
	m.Drain()
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var due *manualTimer
		for _, t := range m.timers {
			if t.next > target {
				continue
			}
			if due == nil || t.next < due.next || (t.next == due.next && t.seq < due.seq) {
				due = t
			}
		}
		if due == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = due.next
		due.next += due.period
		m.mu.Unlock()

		due.fn()
		m.Drain()
	}
}

// Now is the time elapsed since the scheduler was created.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Active reports how many timers are registered and not cancelled.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
