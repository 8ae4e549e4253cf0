package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/seantiz/jsengine/internal/model"
	"github.com/seantiz/jsengine/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxBodySize      = 1 << 20 // 1 MB
)

// listEvaluationsResponse wraps the paginated list response.
type listEvaluationsResponse struct {
	Evaluations []*model.Evaluation `json:"evaluations"`
	Total       int                 `json:"total"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ev, err := s.store.GetEvaluation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "evaluation not found")
		return
	}
	if err != nil {
		s.logger.Error("get evaluation", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get evaluation")
		return
	}

	s.writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	evals, total, err := s.store.ListEvaluations(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list evaluations", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list evaluations")
		return
	}

	if evals == nil {
		evals = []*model.Evaluation{}
	}

	s.writeJSON(w, http.StatusOK, listEvaluationsResponse{
		Evaluations: evals,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	})
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
