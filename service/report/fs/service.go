// Package fs persists reports as JSON or YAML documents through afs, so any
// afs-supported URL (file://, mem://, cloud storage) can hold them.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/procsim/service/report"
	"gopkg.in/yaml.v3"
)

// Format selects the document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Option customises the repository
type Option func(s *Service)

// WithFormat sets the encoding used by Save
func WithFormat(format Format) Option {
	return func(s *Service) {
		s.format = format
	}
}

// WithFs sets the storage service
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// Service is an afs-backed report repository
type Service struct {
	baseURL string
	format  Format
	fs      afs.Service
	mu      sync.RWMutex
}

var _ report.Repository = (*Service)(nil)

// New creates a repository rooted at baseURL, creating it when missing
func New(ctx context.Context, baseURL string, options ...Option) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	ret := &Service{
		baseURL: url.Normalize(baseURL, file.Scheme),
		format:  FormatJSON,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	switch ret.format {
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unsupported report format: %v", ret.format)
	}
	exists, _ := ret.fs.Exists(ctx, ret.baseURL)
	if !exists {
		if err := ret.fs.Create(ctx, ret.baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create report location %v: %w", ret.baseURL, err)
		}
	}
	return ret, nil
}

// Save writes a report to <baseURL>/<runID>.<format>
func (s *Service) Save(ctx context.Context, r *report.Report) error {
	if r == nil {
		return report.ErrNilReport
	}
	if r.RunID == "" {
		return report.ErrInvalidID
	}
	data, err := Encode(r, s.format)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.reportURL(r.RunID, s.format)
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save report %v: %w", URL, err)
	}
	return nil
}

// Load reads a report in either format
func (s *Service) Load(ctx context.Context, runID string) (*report.Report, error) {
	if runID == "" {
		return nil, report.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, format := range []Format{s.format, FormatJSON, FormatYAML} {
		URL := s.reportURL(runID, format)
		if exists, _ := s.fs.Exists(ctx, URL); !exists {
			continue
		}
		data, err := s.fs.DownloadWithURL(ctx, URL)
		if err != nil {
			return nil, fmt.Errorf("failed to read report %v: %w", URL, err)
		}
		return Decode(data, format)
	}
	return nil, report.ErrNotFound
}

// List decodes every report under baseURL, oldest first
func (s *Service) List(ctx context.Context) ([]*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	var ret []*report.Report
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		format, ok := FormatOf(object.Name())
		if !ok {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read report %v: %w", object.URL(), err)
		}
		r, err := Decode(data, format)
		if err != nil {
			return nil, fmt.Errorf("failed to decode report %v: %w", object.URL(), err)
		}
		ret = append(ret, r)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].CreatedAt.Before(ret[j].CreatedAt)
	})
	return ret, nil
}

func (s *Service) reportURL(runID string, format Format) string {
	return url.Join(s.baseURL, runID+"."+string(format))
}

// FormatOf infers the format from a file extension
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// Encode serialises a report
func Encode(r *report.Report, format Format) ([]byte, error) {
	var data []byte
	var err error
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(r)
	default:
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode report %v: %w", r.RunID, err)
	}
	return data, nil
}

// Decode parses a report
func Decode(data []byte, format Format) (*report.Report, error) {
	ret := &report.Report{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, ret)
	default:
		err = json.Unmarshal(data, ret)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return ret, nil
}
