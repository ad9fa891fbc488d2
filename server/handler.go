package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/looplab/fsm"
	"github.com/viant/procsim"
	"github.com/viant/procsim/model/process"
	"go.uber.org/zap"
)

// Status is returned by endpoints that change the simulation without producing a resource
type Status struct {
	Status string `json:"status"`
	Tick   int    `json:"tick"`
	Steps  int    `json:"steps,omitempty"`
	Driver string `json:"driver,omitempty"`
}

// Error is the body of every non-2xx response
type Error struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": procsim.ServiceName, "version": procsim.Version})
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runtime.Snapshot())
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runtime.View())
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runtime.History())
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	ret, err := s.runtime.Report(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ret)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	spec := process.Spec{}
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.writeError(w, fmt.Errorf("%w: failed to decode process: %v", process.ErrInvalidRequest, err))
		return
	}
	summary, err := s.runtime.Submit(r.Context(), spec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) submitRandom(w http.ResponseWriter, r *http.Request) {
	summary, err := s.runtime.SubmitRandom(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	id, err := s.processID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	timeline, ok := s.runtime.Timeline(id)
	if !ok {
		s.writeStatus(w, http.StatusNotFound, fmt.Sprintf("process %d not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, timeline)
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := s.processID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !s.runtime.Cancel(r.Context(), id) {
		s.writeStatus(w, http.StatusNotFound, fmt.Sprintf("process %d is not live", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) step(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "n", 1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	steps, err := s.runtime.StepN(r.Context(), n)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &Status{Status: "ok", Tick: s.runtime.Snapshot().Tick, Steps: steps})
}

func (s *Server) drain(w http.ResponseWriter, r *http.Request) {
	maxSteps, err := queryInt(r, "max", s.drainSteps)
	if err != nil {
		s.writeError(w, err)
		return
	}
	steps, err := s.runtime.Drain(r.Context(), maxSteps)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &Status{Status: "ok", Tick: s.runtime.Snapshot().Tick, Steps: steps})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if err := s.runtime.Reset(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &Status{Status: "ok", Tick: 0, Driver: procsim.DriverPaused})
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	if err := s.runtime.Start(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &Status{Status: "ok", Tick: s.runtime.Snapshot().Tick, Driver: procsim.DriverRunning})
}

func (s *Server) pause(w http.ResponseWriter, r *http.Request) {
	if err := s.runtime.Pause(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, &Status{Status: "ok", Tick: s.runtime.Snapshot().Tick, Driver: procsim.DriverPaused})
}

func (s *Server) processID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid process id %q", process.ErrInvalidRequest, chi.URLParam(r, "id"))
	}
	return id, nil
}

func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue, nil
	}
	ret, err := strconv.Atoi(value)
	if err != nil || ret < 1 {
		return 0, fmt.Errorf("%w: %v must be a positive integer, got %q", process.ErrInvalidRequest, name, value)
	}
	return ret, nil
}

// statusOf maps domain errors to HTTP status codes
func statusOf(err error) int {
	var invalidEvent fsm.InvalidEventError
	switch {
	case errors.Is(err, process.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, process.ErrInvalidState), errors.Is(err, procsim.ErrDriverRunning), errors.As(err, &invalidEvent):
		return http.StatusConflict
	case errors.Is(err, procsim.ErrStepLimit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeStatus(w, status, err.Error())
}

func (s *Server) writeStatus(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, &Error{Status: status, Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}
