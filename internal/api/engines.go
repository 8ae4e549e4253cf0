package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/seantiz/jsengine/internal/backend"
	"github.com/seantiz/jsengine/internal/engine"
)

// engineInfo is one entry of GET /v1/engines.
type engineInfo struct {
	backend.Info
	Active bool `json:"active"`
}

// setEngineRequest is the JSON body for PUT /v1/engines/active.
type setEngineRequest struct {
	Engine string `json:"engine"`
}

type activeEngineResponse struct {
	Engine string `json:"engine"`
	State  string `json:"state"`
}

func (s *Server) handleListEngines(w http.ResponseWriter, r *http.Request) {
	active := s.manager.Active()

	infos := s.manager.Registry().List(r.Context())
	engines := make([]engineInfo, len(infos))
	for i, info := range infos {
		engines[i] = engineInfo{
			Info:   info,
			Active: active != nil && active.Name() == info.Name,
		}
	}

	s.writeJSON(w, http.StatusOK, engines)
}

func (s *Server) handleSetActiveEngine(w http.ResponseWriter, r *http.Request) {
	var req setEngineRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.Engine)
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "engine is required")
		return
	}

	if strings.EqualFold(name, engine.Auto) {
		if _, err := s.manager.SelectAuto(r.Context()); err != nil {
			s.writeEngineError(w, err)
			return
		}
	} else {
		ok, err := s.manager.Set(r.Context(), name)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		if !ok {
			s.writeError(w, http.StatusConflict, "engine "+name+" is not available")
			return
		}
	}

	resp := activeEngineResponse{State: string(s.manager.State(r.Context()))}
	if active := s.manager.Active(); active != nil {
		resp.Engine = active.Name()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// writeEngineError maps engine resolution errors to HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrUnknownEngine):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrNoEngine):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, engine.ErrWrongType):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("resolve engine", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to resolve engine")
	}
}
