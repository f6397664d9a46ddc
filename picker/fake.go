package picker

import (
	"context"
	"sync"
)

// Fake holds every presented picker open until the test resolves it.
type Fake struct {
	mu      sync.Mutex
	exports []string
	imports [][]string
	pending []*pendingPick
}

type pendingPick struct {
	ch   chan Outcome
	once sync.Once
	done chan struct{}
}

func (p *pendingPick) resolve(o Outcome) bool {
	sent := false
	p.once.Do(func() {
		p.ch <- o
		close(p.done)
		sent = true
	})
	return sent
}

func NewFake() *Fake { return &Fake{} }

func (f *Fake) PresentExport(ctx context.Context, artifact string) <-chan Outcome {
	f.mu.Lock()
	f.exports = append(f.exports, artifact)
	f.mu.Unlock()
	return f.open(ctx)
}

func (f *Fake) PresentImport(ctx context.Context, kinds []string) <-chan Outcome {
	f.mu.Lock()
	f.imports = append(f.imports, append([]string(nil), kinds...))
	f.mu.Unlock()
	return f.open(ctx)
}

func (f *Fake) open(ctx context.Context) <-chan Outcome {
	p := &pendingPick{ch: make(chan Outcome, 1), done: make(chan struct{})}
	f.mu.Lock()
	f.pending = append(f.pending, p)
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			f.remove(p)
			p.resolve(Cancelled())
		case <-p.done:
		}
	}()
	return p.ch
}

func (f *Fake) remove(p *pendingPick) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, q := range f.pending {
		if q == p {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
}

// Resolve answers the oldest open picker. It reports false if none is open.
func (f *Fake) Resolve(o Outcome) bool {
	f.mu.Lock()
	if len(f.pending) == 0 {
		f.mu.Unlock()
		return false
	}
	p := f.pending[0]
	f.pending = f.pending[1:]
	f.mu.Unlock()
	return p.resolve(o)
}

func (f *Fake) Complete(location string) bool { return f.Resolve(Completed(location)) }
func (f *Fake) Cancel() bool                  { return f.Resolve(Cancelled()) }
func (f *Fake) Fail(err error) bool           { return f.Resolve(Failed(err)) }

func (f *Fake) Open() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Exports lists the artifacts passed to PresentExport.
func (f *Fake) Exports() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.exports...)
}

func (f *Fake) Imports() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.imports...)
}
