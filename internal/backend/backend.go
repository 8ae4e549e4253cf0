package backend

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is carried by the Result of a backend whose runtime could not be
// located on this host.
var ErrNotFound = errors.New("engine not found")

// Backend is the interface that all script runtimes must implement.
// Implementations are safe for concurrent use.
type Backend interface {
	// Name returns the unique lower-case identity of the runtime.
	Name() string

	// Probe reports whether the runtime is usable right now. A nil error means
	// available; otherwise the error carries the reason.
	Probe(ctx context.Context) error

	// Evaluate runs script and returns its textual result. Failures are
	// reported in Result.Err, never returned or panicked.
	Evaluate(ctx context.Context, script string) Result
}

// Result is the outcome of a single evaluation on one runtime.
type Result struct {
	Output string
	Err    error

	// Stderr is whatever the runtime wrote to its diagnostic stream. It is
	// only promoted to Err when the runtime printed no result.
	Stderr string
}

// Failed reports whether the evaluation produced an error.
func (r Result) Failed() bool { return r.Err != nil }

// StderrError holds the trimmed diagnostic text a runtime wrote to stderr.
type StderrError struct {
	Engine string
	Stderr string
}

func (e *StderrError) Error() string {
	return fmt.Sprintf("%s: %s", e.Engine, e.Stderr)
}

func notFound(name string, reason error) error {
	if reason == nil {
		return fmt.Errorf("engine %q: %w", name, ErrNotFound)
	}
	return fmt.Errorf("engine %q: %w: %v", name, ErrNotFound, reason)
}
