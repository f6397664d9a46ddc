package hotkey

import "sync/atomic"

type Fake struct {
	keydown    chan struct{}
	registered atomic.Bool
}

func NewFake() *Fake {
	return &Fake{keydown: make(chan struct{}, 1)}
}

func (f *Fake) Register() error {
	f.registered.Store(true)
	return nil
}

func (f *Fake) Unregister()              { f.registered.Store(false) }
func (f *Fake) Registered() bool         { return f.registered.Load() }
func (f *Fake) Keydown() <-chan struct{} { return f.keydown }

// SimKeydown queues a press; a press already pending absorbs it.
func (f *Fake) SimKeydown() { notify(f.keydown) }
