package procsim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/engine"
	"github.com/viant/procsim/service/generator"
	"github.com/viant/procsim/service/messaging/memory"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the simulator configuration. The
// zero value of any section falls back to DefaultConfig when loaded from YAML.
type Config struct {
	Memory    MemoryConfig     `json:"memory" yaml:"memory"`
	Clock     ClockConfig      `json:"clock" yaml:"clock"`
	Generator generator.Config `json:"generator" yaml:"generator"`
	History   HistoryConfig    `json:"history" yaml:"history"`
	Events    EventsConfig     `json:"events" yaml:"events"`
	Tracing   TracingConfig    `json:"tracing" yaml:"tracing"`
	Log       LogConfig        `json:"log" yaml:"log"`
}

// MemoryConfig sizes the flat memory pool
type MemoryConfig struct {
	CapacityMB int `json:"capacityMB" yaml:"capacityMB"`
}

// ClockConfig sets the interval driver period
type ClockConfig struct {
	IntervalMs int `json:"intervalMs" yaml:"intervalMs"`
}

// Interval returns the interval driver period
func (c ClockConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// HistoryConfig bounds the memory utilization history
type HistoryConfig struct {
	Size int `json:"size" yaml:"size"`
}

// EventsConfig controls asynchronous lifecycle event delivery and its retry policy
type EventsConfig struct {
	Enabled      bool `json:"enabled" yaml:"enabled"`
	Buffer       int  `json:"buffer" yaml:"buffer"`
	MaxRetries   int  `json:"maxRetries" yaml:"maxRetries"`
	RetryDelayMs int  `json:"retryDelayMs" yaml:"retryDelayMs"`
	DeadLetter   bool `json:"deadLetter" yaml:"deadLetter"`
}

// QueueConfig returns the memory queue settings for event delivery
func (c EventsConfig) QueueConfig() memory.Config {
	return memory.Config{
		MaxRetries:  c.MaxRetries,
		RetryDelay:  time.Duration(c.RetryDelayMs) * time.Millisecond,
		DeadLetter:  c.DeadLetter,
		QueueBuffer: c.Buffer,
	}
}

// TracingConfig enables the stdout span exporter
type TracingConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// DefaultConfig returns a Config populated with the stock simulator settings
func DefaultConfig() *Config {
	return &Config{
		Memory:    MemoryConfig{CapacityMB: allocator.DefaultCapacityMB},
		Clock:     ClockConfig{IntervalMs: 1000},
		Generator: generator.DefaultConfig(),
		History:   HistoryConfig{Size: engine.DefaultHistorySize},
		Events:    EventsConfig{Buffer: 100, MaxRetries: 3, RetryDelayMs: 100, DeadLetter: true},
		Log:       LogConfig{Level: "info"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Memory.CapacityMB <= 0 {
		errs = append(errs, fmt.Errorf("memory.capacityMB must be > 0"))
	}
	if c.Clock.IntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("clock.intervalMs must be > 0"))
	}
	if err := c.Generator.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("generator: %w", err))
	}
	if c.History.Size <= 0 {
		errs = append(errs, fmt.Errorf("history.size must be > 0"))
	}
	if c.Events.Enabled && c.Events.Buffer <= 0 {
		errs = append(errs, fmt.Errorf("events.buffer must be > 0"))
	}
	if c.Events.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("events.maxRetries must be >= 0"))
	}
	if c.Events.RetryDelayMs < 0 {
		errs = append(errs, fmt.Errorf("events.retryDelayMs must be >= 0"))
	}
	if c.Log.Level != "" {
		if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML (or JSON) document from URL over DefaultConfig
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}

// NewLogger builds a zap logger for the log section
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if c.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, err
		}
		zapConfig.Level = level
	}
	return zapConfig.Build()
}
