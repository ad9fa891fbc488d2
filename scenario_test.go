package procsim

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/procsim/model/process"
)

const scenarioYAML = `name: head of line
maxSteps: 50
processes:
  - name: P1
    memory_mb: 60
    duration_s: 2
  - name: P2
    memory_mb: 50
    duration_s: 1
  - at: 1
    name: P3
    memory_mb: 30
    duration_s: 5
cancels:
  - at: 2
    name: P3
`

func TestLoadScenario(t *testing.T) {
	ctx := context.Background()
	URL := "mem://localhost/procsim/scenario/head.yaml"
	require.NoError(t, afs.New().Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte(scenarioYAML))))

	scenario, err := LoadScenario(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, "head of line", scenario.Name)
	assert.Equal(t, 50, scenario.Steps())
	require.Len(t, scenario.Arrivals, 3)
	assert.Equal(t, 1, scenario.Arrivals[2].At)
	assert.Equal(t, 30, scenario.Arrivals[2].MemoryMB)
	assert.Equal(t, []CancelAt{{At: 2, Name: "P3"}}, scenario.Cancels)

	_, err = LoadScenario(ctx, "mem://localhost/procsim/scenario/missing.yaml")
	assert.Error(t, err)
}

func TestScenario_Validate(t *testing.T) {
	valid := func() *Scenario {
		return &Scenario{
			Name:     "s",
			Arrivals: []Arrival{{Spec: process.Spec{Name: "A", MemoryMB: 10, Duration: 1}}},
			Cancels:  []CancelAt{{At: 1, Name: "A"}},
		}
	}
	testCases := []struct {
		name    string
		mutate  func(s *Scenario)
		isValid bool
	}{
		{name: "valid", mutate: func(s *Scenario) {}, isValid: true},
		{name: "negative arrival", mutate: func(s *Scenario) { s.Arrivals[0].At = -1 }},
		{name: "bad spec", mutate: func(s *Scenario) { s.Arrivals[0].MemoryMB = 0 }},
		{name: "unknown cancel", mutate: func(s *Scenario) { s.Cancels[0].Name = "B" }},
		{name: "ambiguous cancel", mutate: func(s *Scenario) { s.Arrivals = append(s.Arrivals, s.Arrivals[0]) }},
		{name: "negative steps", mutate: func(s *Scenario) { s.MaxSteps = -1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scenario := valid()
			tc.mutate(scenario)
			err := scenario.Validate()
			if tc.isValid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, process.ErrInvalidRequest)
		})
	}
	assert.Error(t, (*Scenario)(nil).Validate())
	assert.Equal(t, DefaultMaxSteps, (&Scenario{}).Steps())
}

func TestRuntime_Play(t *testing.T) {
	ctx := context.Background()
	runtime := newTestRuntime(t, nil)
	scenario := &Scenario{
		Name: "mixed",
		Arrivals: []Arrival{
			{At: 0, Spec: process.Spec{Name: "P1", MemoryMB: 60, Duration: 2}},
			{At: 0, Spec: process.Spec{Name: "P2", MemoryMB: 50, Duration: 1}},
			{At: 1, Spec: process.Spec{Name: "P3", MemoryMB: 30, Duration: 5}},
			{At: 6, Spec: process.Spec{Name: "P4", MemoryMB: 10, Duration: 1}},
		},
		Cancels: []CancelAt{{At: 2, Name: "P3"}},
	}

	actual, err := runtime.Play(ctx, scenario)
	require.NoError(t, err)
	assert.Equal(t, "mixed", actual.Origin)
	require.Len(t, actual.Finished, 3)
	assert.Equal(t, []string{"P1", "P2", "P4"}, []string{actual.Finished[0].Name, actual.Finished[1].Name, actual.Finished[2].Name})
	require.Len(t, actual.Canceled, 1)
	assert.Equal(t, "P3", actual.Canceled[0].Name)
	assert.Equal(t, 7, actual.Ticks)
	assert.False(t, runtime.Active())
}

func TestRuntime_Play_StepLimit(t *testing.T) {
	ctx := context.Background()
	runtime := newTestRuntime(t, nil)
	_, err := runtime.Play(ctx, &Scenario{
		Name:     "too long",
		MaxSteps: 3,
		Arrivals: []Arrival{{Spec: process.Spec{Name: "P1", MemoryMB: 10, Duration: 10}}},
	})
	assert.ErrorIs(t, err, ErrStepLimit)
}
