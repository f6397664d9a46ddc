package engine

import "errors"

var (
	ErrNotInitialized = errors.New("recorder not initialized")
	ErrAlreadyInState = errors.New("recorder already in requested state")
)

// MinPower is the reading reported while nothing is being captured.
const MinPower = -160.0
