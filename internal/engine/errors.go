package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidAction wraps ErrInvalidInput so callers can treat both as validation failures.
	ErrInvalidAction = fmt.Errorf("%w: unknown action", ErrInvalidInput)
	// ErrMissingSystemState means signup did not complete. Never repaired automatically.
	ErrMissingSystemState = errors.New("system state missing")
)
