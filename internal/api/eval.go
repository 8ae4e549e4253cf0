package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/seantiz/jsengine/internal/engine"
	"github.com/seantiz/jsengine/internal/model"
)

// evalRequest is the JSON body for POST /v1/eval. An empty or "auto" engine
// evaluates with the active engine.
type evalRequest struct {
	Script string `json:"script"`
	Engine string `json:"engine"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Script) == "" {
		s.writeError(w, http.StatusBadRequest, "script is required")
		return
	}

	var ref any
	if name := strings.TrimSpace(req.Engine); name != "" && !strings.EqualFold(name, engine.Auto) {
		ref = name
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.evalTimeout)
	defer cancel()

	res, err := s.manager.Evaluate(ctx, req.Script, ref)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	labelEngine(r, res.Engine)

	ev := newEvaluation(req.Script, res)

	// Storage failures do not fail the request.
	if err := s.store.CreateEvaluation(r.Context(), ev); err != nil {
		s.logger.Error("persist evaluation", "evaluation_id", ev.ID, "error", err)
	}

	s.writeJSON(w, http.StatusOK, ev)
}

func newEvaluation(script string, res *engine.EvaluationResult) *model.Evaluation {
	ev := &model.Evaluation{
		ID:         model.NewID(),
		Engine:     res.Engine,
		Script:     script,
		Output:     res.Output,
		Error:      errString(res.Err),
		Mismatch:   res.Mismatch,
		DurationMS: res.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	ev.Status = model.StatusFor(ev.Error)

	for _, c := range res.CrossResults {
		ev.CrossResults = append(ev.CrossResults, model.CrossResult{
			Engine: c.Engine,
			Output: c.Output,
			Error:  errString(c.Err),
		})
	}
	return ev
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
