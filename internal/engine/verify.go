package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seantiz/jsengine/internal/backend"
)

// crossCheck evaluates script on every other available engine and flags
// result.Mismatch when the successful outputs disagree. Results are kept in
// registry priority order.
func (m *Manager) crossCheck(ctx context.Context, used backend.Backend, script string, result *EvaluationResult) {
	var others []backend.Backend
	for _, b := range m.registry.Available(ctx) {
		if b != used {
			others = append(others, b)
		}
	}
	if len(others) == 0 {
		return
	}

	cross := make([]CrossResult, len(others))
	var g errgroup.Group
	for i, b := range others {
		g.Go(func() error {
			res := b.Evaluate(ctx, script)
			cross[i] = CrossResult{Engine: b.Name(), Output: res.Output, Err: res.Err}
			return nil
		})
	}
	// Failures are recorded in cross; no goroutine returns an error.
	_ = g.Wait()
	result.CrossResults = cross

	outputs := make(map[string]string, len(cross)+1)
	distinct := make(map[string]struct{})
	if result.Err == nil {
		outputs[result.Engine] = result.Output
		distinct[result.Output] = struct{}{}
	}
	for _, c := range cross {
		if c.Err != nil {
			continue
		}
		outputs[c.Engine] = c.Output
		distinct[c.Output] = struct{}{}
	}
	if len(distinct) <= 1 {
		return
	}

	result.Mismatch = true
	crossMismatches.Inc()
	m.logger.Warn("cross-engine mismatch", "engine", result.Engine, "outputs", outputs)
	m.broker.Publish(Mismatch{
		Engine:  result.Engine,
		Script:  script,
		Outputs: outputs,
		Time:    time.Now().UTC(),
	})
}
