package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/allocator"
)

func newScheduler(t *testing.T, capacity int) *Service {
	t.Helper()
	alloc, err := allocator.New(capacity)
	require.NoError(t, err)
	return New(alloc)
}

func newProcess(t *testing.T, id, memory, burst int) *process.Process {
	t.Helper()
	p, err := process.New(id, "", memory, burst)
	require.NoError(t, err)
	return p
}

func TestService_Create(t *testing.T) {
	srv := newScheduler(t, 100)

	p1 := newProcess(t, 1, 60, 2)
	admitted, err := srv.Create(p1)
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.Equal(t, process.StateReady, p1.State())

	p2 := newProcess(t, 2, 50, 1)
	admitted, err = srv.Create(p2)
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, process.StateNew, p2.State())

	snapshot := srv.Snapshot()
	assert.Equal(t, []int{1}, snapshot.Ready)
	assert.Equal(t, []int{2}, snapshot.Waiting)
	assert.Equal(t, 60, snapshot.Memory.UsedMB)
	assert.True(t, srv.HasPending())
}

func TestService_Create_Duplicate(t *testing.T) {
	srv := newScheduler(t, 100)
	_, err := srv.Create(newProcess(t, 1, 10, 1))
	require.NoError(t, err)
	_, err = srv.Create(newProcess(t, 1, 10, 1))
	assert.ErrorIs(t, err, process.ErrDuplicateReservation)
	assert.Equal(t, []int{1}, srv.Snapshot().Ready)
}

func TestService_Create_NotNew(t *testing.T) {
	srv := newScheduler(t, 100)
	p := newProcess(t, 1, 10, 1)
	require.NoError(t, p.Admit())
	_, err := srv.Create(p)
	assert.ErrorIs(t, err, process.ErrInvalidState)
	assert.Equal(t, 0, srv.Allocator().Used())
	assert.False(t, srv.HasPending())
}

func TestService_RetryWaiting_HeadOfLineBlocking(t *testing.T) {
	srv := newScheduler(t, 100)
	filler := newProcess(t, 10, 100, 5)
	_, err := srv.Create(filler)
	require.NoError(t, err)

	p1 := newProcess(t, 1, 90, 1)
	p2 := newProcess(t, 2, 5, 1)
	for _, p := range []*process.Process{p1, p2} {
		admitted, err := srv.Create(p)
		require.NoError(t, err)
		require.False(t, admitted)
	}
	require.Equal(t, []int{1, 2}, srv.Snapshot().Waiting)

	srv.TakeNext()
	srv.Allocator().Free(filler.ID())
	_, err = srv.Allocator().Reserve(99, 90)
	require.NoError(t, err)
	require.Equal(t, 10, srv.Allocator().Available())

	admitted, err := srv.RetryWaiting()
	require.NoError(t, err)
	assert.Empty(t, admitted)
	assert.Equal(t, []int{1, 2}, srv.Snapshot().Waiting)
	assert.Equal(t, process.StateNew, p2.State())

	srv.Allocator().Free(99)
	admitted, err = srv.RetryWaiting()
	require.NoError(t, err)
	require.Len(t, admitted, 2)
	assert.Equal(t, 1, admitted[0].ID())
	assert.Equal(t, 2, admitted[1].ID())
	assert.Equal(t, []int{1, 2}, srv.Snapshot().Ready)
	assert.Empty(t, srv.Snapshot().Waiting)
}

func TestService_RetryWaiting_PartialAdmission(t *testing.T) {
	srv := newScheduler(t, 100)
	filler := newProcess(t, 10, 100, 1)
	_, err := srv.Create(filler)
	require.NoError(t, err)
	_, err = srv.Create(newProcess(t, 1, 40, 1))
	require.NoError(t, err)
	_, err = srv.Create(newProcess(t, 2, 50, 1))
	require.NoError(t, err)
	_, err = srv.Create(newProcess(t, 3, 20, 1))
	require.NoError(t, err)

	srv.TakeNext()
	srv.Allocator().Free(filler.ID())
	_, err = srv.Allocator().Reserve(99, 10)
	require.NoError(t, err)

	admitted, err := srv.RetryWaiting()
	require.NoError(t, err)
	require.Len(t, admitted, 2)
	assert.Equal(t, []int{1, 2}, srv.Snapshot().Ready)
	assert.Equal(t, []int{3}, srv.Snapshot().Waiting)
	assert.Equal(t, 0, srv.Allocator().Available())
}

func TestService_RetryWaiting_AdmitFailure(t *testing.T) {
	srv := newScheduler(t, 100)
	filler := newProcess(t, 10, 100, 1)
	_, err := srv.Create(filler)
	require.NoError(t, err)
	a := newProcess(t, 1, 10, 1)
	b := newProcess(t, 2, 10, 1)
	c := newProcess(t, 3, 10, 1)
	for _, p := range []*process.Process{a, b, c} {
		_, err = srv.Create(p)
		require.NoError(t, err)
	}
	srv.TakeNext()
	srv.Allocator().Free(filler.ID())
	require.NoError(t, b.Admit())

	admitted, err := srv.RetryWaiting()
	assert.ErrorIs(t, err, process.ErrInvalidState)
	require.Len(t, admitted, 1)
	assert.Equal(t, a, admitted[0])

	snapshot := srv.Snapshot()
	assert.Equal(t, []int{1}, snapshot.Ready)
	assert.Equal(t, []int{2, 3}, snapshot.Waiting)
	assert.Equal(t, map[int]int{1: 10}, snapshot.Memory.Reservations)
	assert.True(t, srv.HasPending())
}

func TestService_Requeue(t *testing.T) {
	srv := newScheduler(t, 100)
	for id := 1; id <= 2; id++ {
		_, err := srv.Create(newProcess(t, id, 10, 1))
		require.NoError(t, err)
	}
	head := srv.TakeNext()
	require.NotNil(t, head)
	srv.Requeue(head)
	assert.Equal(t, []int{1, 2}, srv.Snapshot().Ready)
}

func TestService_TakeNext(t *testing.T) {
	srv := newScheduler(t, 100)
	assert.Nil(t, srv.TakeNext())
	for i := 1; i <= 3; i++ {
		_, err := srv.Create(newProcess(t, i, 10, 1))
		require.NoError(t, err)
	}
	for i := 1; i <= 3; i++ {
		p := srv.TakeNext()
		require.NotNil(t, p)
		assert.Equal(t, i, p.ID())
	}
	assert.Nil(t, srv.TakeNext())
	assert.False(t, srv.HasPending())
}

func TestService_Remove(t *testing.T) {
	srv := newScheduler(t, 100)
	for id, memory := range []int{60, 50, 10} {
		_, err := srv.Create(newProcess(t, id+1, memory, 1))
		require.NoError(t, err)
	}
	require.Equal(t, []int{1, 3}, srv.Snapshot().Ready)
	require.Equal(t, []int{2}, srv.Snapshot().Waiting)

	testCases := []struct {
		name   string
		id     int
		expect Location
	}{
		{name: "ready", id: 3, expect: LocationReady},
		{name: "waiting", id: 2, expect: LocationWaiting},
		{name: "unknown", id: 42, expect: LocationNone},
		{name: "already removed", id: 3, expect: LocationNone},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, location := srv.Lookup(tc.id)
			assert.Equal(t, tc.expect, location)
			p, location := srv.Remove(tc.id)
			assert.Equal(t, tc.expect, location)
			if tc.expect == LocationNone {
				assert.Nil(t, p)
				return
			}
			assert.Equal(t, tc.id, p.ID())
		})
	}
	assert.Equal(t, []int{1}, srv.Snapshot().Ready)
	assert.Empty(t, srv.Snapshot().Waiting)
}
