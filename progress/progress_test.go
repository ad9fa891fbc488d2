package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procsim/service/event"
)

func TestDeltaOf(t *testing.T) {
	testCases := []struct {
		eventType event.Type
		expect    Delta
	}{
		{eventType: event.TypeSubmitted, expect: Delta{Submitted: 1}},
		{eventType: event.TypeWaiting, expect: Delta{Waited: 1}},
		{eventType: event.TypeAdmitted, expect: Delta{Admitted: 1}},
		{eventType: event.TypeDispatched, expect: Delta{Dispatched: 1}},
		{eventType: event.TypeCompleted, expect: Delta{Completed: 1}},
		{eventType: event.TypeCanceled, expect: Delta{Canceled: 1}},
		{eventType: event.Type("unknown"), expect: Delta{}},
	}
	for _, testCase := range testCases {
		t.Run(string(testCase.eventType), func(t *testing.T) {
			assert.Equal(t, testCase.expect, DeltaOf(testCase.eventType))
		})
	}
}

func TestProgress_Update(t *testing.T) {
	var seen []Progress
	tracker := New(func(p Progress) { seen = append(seen, p) })
	for _, eventType := range []event.Type{event.TypeSubmitted, event.TypeAdmitted, event.TypeSubmitted, event.TypeWaiting, event.TypeCanceled} {
		tracker.Update(DeltaOf(eventType))
	}
	actual := tracker.Snapshot()
	assert.Equal(t, 2, actual.Submitted)
	assert.Equal(t, 1, actual.Canceled)
	assert.Equal(t, 1, actual.Pending())
	assert.Len(t, seen, 5)
	assert.Equal(t, 1, seen[0].Submitted)
	assert.Equal(t, 2, actual.Counts()[event.TypeSubmitted])
	assert.Equal(t, 0, actual.Counts()[event.TypeCompleted])

	tracker.OnChange(nil)
	tracker.Update(Delta{Completed: 1})
	assert.Len(t, seen, 5)
	assert.Equal(t, 0, tracker.Snapshot().Pending())
}

func TestProgress_Concurrent(t *testing.T) {
	tracker := New(nil)
	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tracker.Update(Delta{Submitted: 1, Completed: 1})
			}
		}()
	}
	wg.Wait()
	actual := tracker.Snapshot()
	assert.Equal(t, 1000, actual.Submitted)
	assert.Equal(t, 0, actual.Pending())
}

func TestProgress_Nil(t *testing.T) {
	var tracker *Tracker
	tracker.Update(Delta{Submitted: 1})
	tracker.OnChange(nil)
	assert.Equal(t, Progress{}, tracker.Snapshot())
}
