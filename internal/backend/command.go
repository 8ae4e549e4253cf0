package backend

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/seantiz/jsengine/internal/proc"
)

// setupTimeout bounds the one-time version check a command backend runs while
// locating its runtime.
const setupTimeout = 10 * time.Second

// smokeScript and smokeResult form the availability check every command
// backend runs through its full invocation path.
const (
	smokeScript = "23+19"
	smokeResult = "42"
)

// invocation is the resolved command line prefix of a runtime. The wrapped
// script is appended after "-e".
type invocation struct {
	exe  string
	args []string
}

// host is the view of the local machine a backend uses to find and run its
// runtime.
type host struct {
	run        proc.Runner
	lookPath   func(file string) (string, error)
	glob       func(pattern string) ([]string, error)
	exists     func(path string) bool
	executable func() (string, error)
}

// locateFunc finds the runtime on this host. It is called until it succeeds
// once; the invocation it returns is then fixed for the backend's lifetime.
type locateFunc func(ctx context.Context, h host) (invocation, error)

// commandBackend evaluates scripts by spawning an external runtime shell.
type commandBackend struct {
	name    string
	wrapper string
	locate  locateFunc
	decode  func(string) string
	host    host

	mu    sync.Mutex
	found bool
	inv   invocation
}

var _ Backend = (*commandBackend)(nil)

func (b *commandBackend) Name() string { return b.name }

// resolve returns the runtime's invocation, locating it if no earlier call
// has. A failed lookup is not remembered, so a runtime installed later is
// picked up by the next call.
func (b *commandBackend) resolve() (invocation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.found {
		return b.inv, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	inv, err := b.locate(ctx, b.host)
	if err != nil {
		return invocation{}, err
	}
	b.inv, b.found = inv, true
	return inv, nil
}

// Probe locates the runtime and checks that it evaluates the smoke script.
// Only stdout decides; warnings on stderr do not disqualify a runtime.
func (b *commandBackend) Probe(ctx context.Context) error {
	if _, err := b.resolve(); err != nil {
		probeFailures.WithLabelValues(b.name).Inc()
		return notFound(b.name, err)
	}

	res := b.Evaluate(ctx, smokeScript)
	if res.Output == smokeResult {
		return nil
	}
	probeFailures.WithLabelValues(b.name).Inc()
	if res.Err != nil {
		return fmt.Errorf("engine %q smoke test: %w", b.name, res.Err)
	}
	return fmt.Errorf("engine %q smoke test: got %q, want %q", b.name, res.Output, smokeResult)
}

// Evaluate wraps the escaped script and runs it through the runtime. Nothing
// is spawned when the runtime was not found. Stderr becomes the error only
// when stdout is empty.
func (b *commandBackend) Evaluate(ctx context.Context, script string) Result {
	inv, err := b.resolve()
	if err != nil {
		return Result{Err: notFound(b.name, err)}
	}

	args := make([]string, 0, len(inv.args)+2)
	args = append(args, inv.args...)
	args = append(args, "-e", fmt.Sprintf(b.wrapper, Escape(script)))

	out, err := b.host.run(ctx, inv.exe, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return Result{Err: notFound(b.name, err)}
		}
		return Result{Err: fmt.Errorf("engine %q: %w", b.name, err)}
	}

	res := Result{Output: out.Stdout, Stderr: out.Stderr}
	if b.decode != nil {
		res.Output = b.decode(res.Output)
	}
	if res.Output == "" && out.Stderr != "" {
		res.Err = &StderrError{Engine: b.name, Stderr: out.Stderr}
	}
	return res
}

// lookPathWithVersion resolves exe on PATH and runs "<exe> --version" to warm
// it up. The version check's output is not interpreted.
func lookPathWithVersion(exe string) locateFunc {
	return func(ctx context.Context, h host) (invocation, error) {
		path, err := h.lookPath(exe)
		if err != nil {
			return invocation{}, err
		}
		if _, err := h.run(ctx, path, "--version"); err != nil {
			return invocation{}, fmt.Errorf("version check: %w", err)
		}
		return invocation{exe: path}, nil
	}
}
