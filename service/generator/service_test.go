package generator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procsim/model/process"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		isValid bool
	}{
		{name: "default", mutate: func(c *Config) {}, isValid: true},
		{name: "single value", mutate: func(c *Config) { c.MinMemoryMB, c.MaxMemoryMB = 64, 64 }, isValid: true},
		{name: "zero memory", mutate: func(c *Config) { c.MinMemoryMB = 0 }},
		{name: "inverted memory", mutate: func(c *Config) { c.MaxMemoryMB = 10 }},
		{name: "zero duration", mutate: func(c *Config) { c.MinDuration = 0 }},
		{name: "inverted duration", mutate: func(c *Config) { c.MaxDuration = 1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(&config)
			err := config.Validate()
			if tc.isValid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, process.ErrInvalidRequest)
		})
	}
}

func TestService_Next(t *testing.T) {
	srv, err := New(DefaultConfig(), WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)

	specs := srv.Batch(200)
	require.Len(t, specs, 200)
	for _, spec := range specs {
		assert.GreaterOrEqual(t, spec.MemoryMB, 20)
		assert.LessOrEqual(t, spec.MemoryMB, 1000)
		assert.GreaterOrEqual(t, spec.Duration, 3)
		assert.LessOrEqual(t, spec.Duration, 15)
		assert.NoError(t, spec.Validate())
	}
	assert.Equal(t, "Process 1", specs[0].Name)
	assert.Equal(t, "Process 200", specs[199].Name)
	assert.Equal(t, 200, srv.Generated())
}

func TestService_Seeded(t *testing.T) {
	config := DefaultConfig()
	config.Seed = 7
	first, err := New(config)
	require.NoError(t, err)
	second, err := New(config, WithNamePrefix("Random"))
	require.NoError(t, err)

	a, b := first.Batch(10), second.Batch(10)
	for i := range a {
		assert.Equal(t, a[i].MemoryMB, b[i].MemoryMB)
		assert.Equal(t, a[i].Duration, b[i].Duration)
	}
	assert.Equal(t, "Random 1", b[0].Name)
}
