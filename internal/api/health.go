package api

import (
	"net/http"

	"github.com/seantiz/jsengine/internal/engine"
)

type healthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine"`
	State  string `json:"state"`
}

// handleHealthz reports 503 unless the active engine currently probes.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	state := s.manager.State(r.Context())

	resp := healthResponse{Status: "ok", State: string(state)}
	if active := s.manager.Active(); active != nil {
		resp.Engine = active.Name()
	}

	status := http.StatusOK
	if state != engine.StateResolved {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}
