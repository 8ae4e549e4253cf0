package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/seantiz/jsengine/internal/backend"
)

// Auto is the engine name that requests automatic selection.
const Auto = "auto"

// State describes the manager's current selection.
type State string

const (
	StateUnresolved  State = "unresolved"
	StateResolved    State = "resolved"
	StateUnavailable State = "unavailable"
)

// Options configures a Manager.
type Options struct {
	// Engine is the preferred engine name. Empty or "auto" selects the
	// first available engine in priority order.
	Engine string

	// Verify cross-checks every evaluation against the other available
	// engines.
	Verify bool
}

// CrossResult is the outcome of a verification run on one other engine.
type CrossResult struct {
	Engine string
	Output string
	Err    error
}

// EvaluationResult is the outcome of one Evaluate call.
type EvaluationResult struct {
	Engine       string
	Output       string
	Err          error
	CrossResults []CrossResult
	Mismatch     bool
	Duration     time.Duration
}

// Manager owns the active engine selection. It is safe for concurrent use.
type Manager struct {
	registry *backend.Registry
	verify   bool
	logger   *slog.Logger
	broker   *Broker

	mu     sync.RWMutex
	active backend.Backend
}

// New creates a manager and selects its initial engine. An explicit engine
// that is registered but unavailable is downgraded to automatic selection with
// a single warning; a name that matches no registered engine is an error. When
// nothing is available the manager starts unresolved.
func New(ctx context.Context, reg *backend.Registry, opts Options, logger *slog.Logger) (*Manager, error) {
	m := &Manager{
		registry: reg,
		verify:   opts.Verify,
		logger:   logger,
		broker:   NewBroker(),
	}

	name := strings.TrimSpace(opts.Engine)
	if name != "" && !strings.EqualFold(name, Auto) {
		ok, err := m.Set(ctx, name)
		if err != nil {
			m.broker.Close()
			return nil, err
		}
		if ok {
			return m, nil
		}
		m.logger.Warn("engine downgraded to auto", "engine", name, "reason", "engine unavailable")
	}

	if _, err := m.SelectAuto(ctx); err != nil {
		m.logger.Error("no engine available", "engines", len(reg.All()))
	}
	return m, nil
}

// Registry returns the registry the manager selects from.
func (m *Manager) Registry() *backend.Registry { return m.registry }

// Broker returns the broker that receives mismatch diagnostics.
func (m *Manager) Broker() *Broker { return m.broker }

// Verify reports whether cross-engine verification is enabled.
func (m *Manager) Verify() bool { return m.verify }

// Active returns the selected engine, or nil when unresolved.
func (m *Manager) Active() backend.Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// State probes the selected engine and reports the manager's state.
func (m *Manager) State(ctx context.Context) State {
	active := m.Active()
	if active == nil {
		return StateUnresolved
	}
	if err := active.Probe(ctx); err != nil {
		return StateUnavailable
	}
	return StateResolved
}

// Get resolves ref to a registered engine. ref may be an engine name
// (case-insensitive), a registered backend, or nil for the active engine.
func (m *Manager) Get(ref any) (backend.Backend, error) {
	switch r := ref.(type) {
	case nil:
		if active := m.Active(); active != nil {
			return active, nil
		}
		return nil, ErrNoEngine
	case string:
		b, ok := m.registry.Lookup(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, r)
		}
		return b, nil
	case backend.Backend:
		if !m.registry.Contains(r) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, r.Name())
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrWrongType, ref)
	}
}

// Set selects the engine referenced by ref if it is available now. A
// reference that does not resolve returns an error; an engine that fails its
// probe returns false. The selection is unchanged unless Set returns true.
func (m *Manager) Set(ctx context.Context, ref any) (bool, error) {
	b, err := m.Get(ref)
	if err != nil {
		return false, err
	}

	if err := b.Probe(ctx); err != nil {
		m.logger.Debug("engine not selectable", "engine", b.Name(), "error", err)
		return false, nil
	}

	m.mu.Lock()
	m.active = b
	m.mu.Unlock()

	m.logger.Info("engine selected", "engine", b.Name())
	return true, nil
}

// SelectAuto selects the first available engine in priority order.
func (m *Manager) SelectAuto(ctx context.Context) (backend.Backend, error) {
	for _, b := range m.registry.Available(ctx) {
		ok, err := m.Set(ctx, b)
		if err != nil {
			return nil, err
		}
		if ok {
			return b, nil
		}
	}
	return nil, ErrNoEngine
}

// Evaluate runs script on the engine referenced by ref, or the active engine
// when ref is nil. Failures of the engine itself are reported in the result;
// the returned error is only set when no engine could be resolved.
func (m *Manager) Evaluate(ctx context.Context, script string, ref any) (*EvaluationResult, error) {
	return m.evaluate(ctx, normalize([]byte(script)), ref)
}

// EvaluateBytes is Evaluate for raw script bytes. A UTF-8 byte order mark is
// stripped and non-UTF-8 input is read as ISO-8859-1.
func (m *Manager) EvaluateBytes(ctx context.Context, script []byte, ref any) (*EvaluationResult, error) {
	return m.evaluate(ctx, normalize(script), ref)
}

// Eval evaluates script and returns only its output. A failure reported by
// the engine is returned as an *EvalError.
func (m *Manager) Eval(ctx context.Context, script string, ref any) (string, error) {
	res, err := m.Evaluate(ctx, script, ref)
	if err != nil {
		return "", err
	}
	if res.Err != nil {
		return res.Output, &EvalError{Engine: res.Engine, Err: res.Err}
	}
	return res.Output, nil
}

func (m *Manager) evaluate(ctx context.Context, script string, ref any) (*EvaluationResult, error) {
	b, err := m.Get(ref)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := b.Evaluate(ctx, script)
	elapsed := time.Since(start)

	status := "ok"
	if res.Err != nil {
		status = "error"
	}
	evaluationsTotal.WithLabelValues(b.Name(), status).Inc()
	evaluationDuration.WithLabelValues(b.Name()).Observe(elapsed.Seconds())

	result := &EvaluationResult{
		Engine:   b.Name(),
		Output:   res.Output,
		Err:      res.Err,
		Duration: elapsed,
	}

	switch {
	case res.Err != nil && !errors.Is(res.Err, context.Canceled):
		m.logger.Debug("evaluation failed", "engine", b.Name(), "error", res.Err)
	case res.Err == nil && res.Stderr != "":
		m.logger.Debug("engine diagnostics", "engine", b.Name(), "stderr", res.Stderr)
	}

	if m.verify {
		m.crossCheck(ctx, b, script, result)
	}
	return result, nil
}
