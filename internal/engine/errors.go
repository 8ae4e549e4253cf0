package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEngine is returned when no engine is selected or none is available.
	ErrNoEngine = errors.New("no engine available")

	// ErrUnknownEngine is returned for a reference that matches no registered
	// engine.
	ErrUnknownEngine = errors.New("unknown engine")

	// ErrWrongType is returned for a reference that is neither a name, a
	// registered backend, nor nil.
	ErrWrongType = errors.New("wrong engine reference type")
)

// EvalError is the failure reported by the engine that evaluated a script.
type EvalError struct {
	Engine string
	Err    error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate with %s: %v", e.Engine, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
