package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// gojaBackend evaluates scripts in-process with the goja interpreter. Each
// evaluation gets a fresh runtime, so no state leaks between scripts.
type gojaBackend struct{}

var _ Backend = gojaBackend{}

// NewGoja returns the embedded goja backend.
func NewGoja() Backend { return gojaBackend{} }

func (gojaBackend) Name() string { return NameGoja }

// Probe instantiates an interpreter. Success is definitive.
func (gojaBackend) Probe(_ context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			probeFailures.WithLabelValues(NameGoja).Inc()
			err = fmt.Errorf("engine %q: %v", NameGoja, r)
		}
	}()
	goja.New()
	return nil
}

func (gojaBackend) Evaluate(ctx context.Context, script string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("engine %q: %v", NameGoja, r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return Result{Err: fmt.Errorf("engine %q: %w", NameGoja, err)}
	}

	vm := goja.New()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	v, err := vm.RunString(script)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{Err: fmt.Errorf("engine %q: %w", NameGoja, ctxErr)}
		}
		return Result{Err: fmt.Errorf("engine %q: %w", NameGoja, err)}
	}
	if v == nil {
		return Result{Output: "undefined"}
	}
	return Result{Output: strings.TrimSpace(v.String())}
}
