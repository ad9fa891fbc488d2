package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bvinc/go-sqlite-lite/sqlite3"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/engine"
	simreport "github.com/viant/procsim/service/report"
)

func TestStore(t *testing.T) {
	spec.Run(t, "Store", testStore, spec.Report(report.Terminal{}))
}

func testStore(t *testing.T, describe spec.G, it spec.S) {
	var subject *Store
	var conn *sqlite3.Conn
	var recorded time.Time

	it.Before(func() {
		var err error
		conn, err = sqlite3.Open(filepath.Join(t.TempDir(), "procsim_test.db"))
		require.NoError(t, err)
		subject, err = New(conn)
		require.NoError(t, err)
		recorded = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	it.After(func() {
		assert.NoError(t, subject.Close())
	})

	describe("Store()", func() {
		var runRowID int64

		it.Before(func() {
			var err error
			runRowID, err = subject.Store(&simreport.Report{
				RunID:           "run-1",
				CreatedAt:       recorded,
				Origin:          "scenario.yaml",
				CapacityMB:      100,
				Ticks:           3,
				AvgTurnaround:   2.5,
				AvgWait:         1,
				Throughput:      0.5,
				PeakUtilization: 60,
				Finished: []*simreport.Entry{
					{
						Summary:  process.Summary{ID: 1, Name: "P1", MemoryMB: 60, Duration: 2, Consumed: 2, State: process.StateTerminated},
						Timeline: engine.Timeline{Finished: 2, Canceled: -1},
					},
					{
						Summary:  process.Summary{ID: 2, Name: "P2", MemoryMB: 50, Duration: 1, Consumed: 1, State: process.StateTerminated},
						Timeline: engine.Timeline{Admitted: 2, Dispatched: 2, Finished: 3, Canceled: -1},
					},
				},
				Canceled: []*simreport.Entry{
					{
						Summary:  process.Summary{ID: 3, Name: "P3", MemoryMB: 10, Duration: 4, Remaining: 4, State: process.StateCanceled},
						Timeline: engine.Timeline{Admitted: 0, Dispatched: -1, Finished: -1, Canceled: 0},
					},
				},
				Utilization: []float64{60, 50, 0},
			})
			require.NoError(t, err)
		})

		it("returns the run row id", func() {
			assert.Equal(t, int64(1), runRowID)
		})

		describe("run metadata", func() {
			var runID, recordedAt, origin string
			var capacity, ticks int
			var avgTurnaround, peak float64

			it.Before(func() {
				singleQuery(t, conn, `select run_id, recorded, origin, capacity_mb, ticks, avg_turnaround, peak_utilization from runs`,
					&runID, &recordedAt, &origin, &capacity, &ticks, &avgTurnaround, &peak)
			})

			it("records the run", func() {
				assert.Equal(t, "run-1", runID)
				assert.Equal(t, recorded.Format(time.RFC3339), recordedAt)
				assert.Equal(t, "scenario.yaml", origin)
				assert.Equal(t, 100, capacity)
				assert.Equal(t, 3, ticks)
				assert.Equal(t, 2.5, avgTurnaround)
				assert.Equal(t, 60.0, peak)
			})
		})

		describe("processes", func() {
			it("records one row per process", func() {
				var count int
				singleQuery(t, conn, `select count(1) from run_processes where run = 1`, &count)
				assert.Equal(t, 3, count)
			})

			it("records the outcome", func() {
				var finished, canceled int
				singleQuery(t, conn, `select count(1) from run_processes where outcome = 'finished'`, &finished)
				singleQuery(t, conn, `select count(1) from run_processes where outcome = 'canceled'`, &canceled)
				assert.Equal(t, 2, finished)
				assert.Equal(t, 1, canceled)
			})

			it("records the timeline", func() {
				var state string
				var admitted, finished int
				singleQuery(t, conn, `select state, admitted, finished from run_processes where process_id = 2`, &state, &admitted, &finished)
				assert.Equal(t, "TERMINATED", state)
				assert.Equal(t, 2, admitted)
				assert.Equal(t, 3, finished)
			})
		})

		describe("utilizations", func() {
			it("records every sample", func() {
				var count int
				var total float64
				singleQuery(t, conn, `select count(1), sum(utilization) from run_utilizations`, &count, &total)
				assert.Equal(t, 3, count)
				assert.Equal(t, 110.0, total)
			})
		})

		describe("Runs()", func() {
			it("lists recorded run ids", func() {
				runs, err := subject.Runs()
				require.NoError(t, err)
				assert.Equal(t, []string{"run-1"}, runs)
			})
		})

		describe("duplicate run id", func() {
			it("fails without partial writes", func() {
				_, err := subject.Store(&simreport.Report{RunID: "run-1", CreatedAt: recorded, Utilization: []float64{1}})
				assert.Error(t, err)
				var count int
				singleQuery(t, conn, `select count(1) from run_utilizations`, &count)
				assert.Equal(t, 3, count)
			})
		})
	})

	describe("invalid reports", func() {
		it("rejects nil and unnamed reports", func() {
			_, err := subject.Store(nil)
			assert.ErrorIs(t, err, simreport.ErrNilReport)
			_, err = subject.Store(&simreport.Report{})
			assert.ErrorIs(t, err, simreport.ErrInvalidID)
		})
	})
}

func singleQuery(t *testing.T, conn *sqlite3.Conn, sql string, scanDst ...interface{}) {
	selectStmt, err := conn.Prepare(sql)
	require.NoError(t, err)

	hasResult, err := selectStmt.Step()
	require.True(t, hasResult)
	require.NoError(t, err)

	err = selectStmt.Scan(scanDst...)
	require.NoError(t, err)

	err = selectStmt.Close()
	require.NoError(t, err)
}
