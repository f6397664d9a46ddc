package transport

import (
	"errors"
	"fmt"

	"hapticrec/engine"
)

var (
	ErrEngineNotInitialized = errors.New("recording engine not initialized")
	ErrSessionBusy          = errors.New("session busy: picker is open")
	ErrInvalidTransition    = errors.New("invalid transport transition")
)

// EngineError is a recoverable failure of a recording engine operation.
type EngineError struct {
	Op  engine.Op
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func invalid(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidTransition)
}
