// Package client calls a procsim HTTP server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/viant/procsim"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/server"
	"github.com/viant/procsim/service/engine"
	"github.com/viant/procsim/service/report"
)

// ErrNotFound is returned for unknown or no longer live processes
var ErrNotFound = errors.New("not found")

// APIError carries a non-2xx server response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("procsim: %d %s", e.StatusCode, e.Message)
}

// Unwrap exposes ErrNotFound or the domain error matching the status code
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return process.ErrInvalidRequest
	case http.StatusUnprocessableEntity:
		return procsim.ErrStepLimit
	}
	return nil
}

// Client is a typed procsim API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises the Client
type Option func(c *Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the server at baseURL
func New(baseURL string, options ...Option) *Client {
	ret := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Snapshot returns the engine snapshot
func (c *Client) Snapshot(ctx context.Context) (*engine.Snapshot, error) {
	ret := &engine.Snapshot{}
	return ret, c.do(ctx, http.MethodGet, "/snapshot", nil, ret)
}

// View returns the render-ready view
func (c *Client) View(ctx context.Context) (*procsim.View, error) {
	ret := &procsim.View{}
	return ret, c.do(ctx, http.MethodGet, "/processes", nil, ret)
}

// History returns memory utilization samples, oldest first
func (c *Client) History(ctx context.Context) ([]float64, error) {
	var ret []float64
	return ret, c.do(ctx, http.MethodGet, "/history", nil, &ret)
}

// Report builds the run report on the server
func (c *Client) Report(ctx context.Context) (*report.Report, error) {
	ret := &report.Report{}
	return ret, c.do(ctx, http.MethodGet, "/report", nil, ret)
}

// Submit adds a process
func (c *Client) Submit(ctx context.Context, spec process.Spec) (*process.Summary, error) {
	ret := &process.Summary{}
	return ret, c.do(ctx, http.MethodPost, "/processes", &spec, ret)
}

// SubmitRandom adds a generated process
func (c *Client) SubmitRandom(ctx context.Context) (*process.Summary, error) {
	ret := &process.Summary{}
	return ret, c.do(ctx, http.MethodPost, "/processes/random", nil, ret)
}

// Timeline returns the transition ticks of a process
func (c *Client) Timeline(ctx context.Context, id int) (*engine.Timeline, error) {
	ret := &engine.Timeline{}
	return ret, c.do(ctx, http.MethodGet, "/processes/"+strconv.Itoa(id)+"/timeline", nil, ret)
}

// Cancel cancels a live process; ErrNotFound is returned otherwise
func (c *Client) Cancel(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/processes/"+strconv.Itoa(id), nil, nil)
}

// Step advances n logical units
func (c *Client) Step(ctx context.Context, n int) (*server.Status, error) {
	return c.status(ctx, "/step?"+url.Values{"n": {strconv.Itoa(n)}}.Encode())
}

// Drain steps until idle or maxSteps; zero uses the server default
func (c *Client) Drain(ctx context.Context, maxSteps int) (*server.Status, error) {
	path := "/drain"
	if maxSteps > 0 {
		path += "?" + url.Values{"max": {strconv.Itoa(maxSteps)}}.Encode()
	}
	return c.status(ctx, path)
}

// Reset discards the simulation
func (c *Client) Reset(ctx context.Context) (*server.Status, error) {
	return c.status(ctx, "/reset")
}

// Start runs the interval driver
func (c *Client) Start(ctx context.Context) (*server.Status, error) {
	return c.status(ctx, "/start")
}

// Pause stops the interval driver
func (c *Client) Pause(ctx context.Context) (*server.Status, error) {
	return c.status(ctx, "/pause")
}

func (c *Client) status(ctx context.Context, path string) (*server.Status, error) {
	ret := &server.Status{}
	return ret, c.do(ctx, http.MethodPost, path, nil, ret)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %v %v request: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %v %v: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %v %v response: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		payload := server.Error{}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %v %v response: %w", method, path, err)
	}
	return nil
}
