package api

import (
	"net/http"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	Total         int            `json:"total"`
	ByEngine      map[string]int `json:"by_engine"`
	ByStatus      map[string]int `json:"by_status"`
	Mismatches    int            `json:"mismatches"`
	AvgDurationMS float64        `json:"avg_duration_ms"`
	Verify        bool           `json:"verify"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetEvaluationStats(r.Context())
	if err != nil {
		s.logger.Error("get evaluation stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		Total:         stats.Total,
		ByEngine:      stats.CountByEngine,
		ByStatus:      stats.CountByStatus,
		Mismatches:    stats.Mismatches,
		AvgDurationMS: stats.AvgDurationMS,
		Verify:        s.manager.Verify(),
	})
}
