// Package memory keeps reports in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/procsim/service/report"
)

// Service is an in-memory report repository; it stores and returns copies
type Service struct {
	mux     sync.RWMutex
	reports map[string]*report.Report
}

var _ report.Repository = (*Service)(nil)

// New creates an empty repository
func New() *Service {
	return &Service{reports: make(map[string]*report.Report)}
}

// Save stores or overwrites a report
func (s *Service) Save(_ context.Context, r *report.Report) error {
	if r == nil {
		return report.ErrNilReport
	}
	if r.RunID == "" {
		return report.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.reports[r.RunID] = r.Clone()
	return nil
}

// Load returns a copy of the report or report.ErrNotFound
func (s *Service) Load(_ context.Context, runID string) (*report.Report, error) {
	if runID == "" {
		return nil, report.ErrInvalidID
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	r, ok := s.reports[runID]
	if !ok {
		return nil, report.ErrNotFound
	}
	return r.Clone(), nil
}

// List returns copies of all reports, oldest first
func (s *Service) List(_ context.Context) ([]*report.Report, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]*report.Report, 0, len(s.reports))
	for _, r := range s.reports {
		ret = append(ret, r.Clone())
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].CreatedAt.Before(ret[j].CreatedAt)
	})
	return ret, nil
}
