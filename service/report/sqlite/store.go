// Package sqlite records run reports in a SQLite database.
package sqlite

import (
	"fmt"
	"time"

	"github.com/bvinc/go-sqlite-lite/sqlite3"
	"github.com/viant/procsim/service/report"
)

const (
	OutcomeFinished = "finished"
	OutcomeCanceled = "canceled"
	OutcomePending  = "pending"
)

// Store writes reports to SQLite
type Store struct {
	conn *sqlite3.Conn
}

// New applies the schema and returns a store over conn
func New(conn *sqlite3.Conn) (*Store, error) {
	if err := conn.Exec(Schema); err != nil {
		return nil, fmt.Errorf("could not apply procsim schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Open opens or creates a database file and applies the schema
func Open(path string) (*Store, error) {
	conn, err := sqlite3.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v: %w", path, err)
	}
	ret, err := New(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ret, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Store inserts the report, its processes and utilization samples; it returns the run row id
func (s *Store) Store(r *report.Report) (runRowID int64, err error) {
	if r == nil {
		return -1, report.ErrNilReport
	}
	if r.RunID == "" {
		return -1, report.ErrInvalidID
	}
	err = s.conn.WithTx(func() error {
		if runRowID, err = s.run(r); err != nil {
			return err
		}
		if err = s.processes(runRowID, r); err != nil {
			return err
		}
		return s.utilizations(runRowID, r.Utilization)
	})
	if err != nil {
		return -1, fmt.Errorf("failed to store run %v: %w", r.RunID, err)
	}
	return runRowID, nil
}

func (s *Store) run(r *report.Report) (int64, error) {
	stmt, err := s.conn.Prepare(`insert into runs(
	                               run_id
	                             , recorded
	                             , origin
	                             , capacity_mb
	                             , ticks
	                             , avg_turnaround
	                             , avg_wait
	                             , throughput
	                             , peak_utilization)
	                            values (?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return -1, err
	}
	defer stmt.Close()
	err = stmt.Exec(
		r.RunID,
		r.CreatedAt.Format(time.RFC3339),
		r.Origin,
		r.CapacityMB,
		r.Ticks,
		r.AvgTurnaround,
		r.AvgWait,
		r.Throughput,
		r.PeakUtilization,
	)
	if err != nil {
		return -1, err
	}
	return s.conn.LastInsertRowID(), nil
}

func (s *Store) processes(runRowID int64, r *report.Report) error {
	stmt, err := s.conn.Prepare(`insert into run_processes(
	                               run
	                             , outcome
	                             , process_id
	                             , name
	                             , memory_mb
	                             , duration
	                             , consumed
	                             , remaining
	                             , state
	                             , submitted
	                             , admitted
	                             , dispatched
	                             , finished
	                             , canceled)
	                            values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	groups := []struct {
		outcome string
		entries []*report.Entry
	}{
		{OutcomeFinished, r.Finished},
		{OutcomeCanceled, r.Canceled},
		{OutcomePending, r.Pending},
	}
	for _, group := range groups {
		for _, entry := range group.entries {
			err = stmt.Exec(
				runRowID,
				group.outcome,
				entry.ID,
				entry.Name,
				entry.MemoryMB,
				entry.Duration,
				entry.Consumed,
				entry.Remaining,
				entry.State.String(),
				entry.Submitted,
				entry.Admitted,
				entry.Dispatched,
				entry.Timeline.Finished,
				entry.Timeline.Canceled,
			)
			if err != nil {
				return fmt.Errorf("failed to insert process %d: %w", entry.ID, err)
			}
		}
	}
	return nil
}

func (s *Store) utilizations(runRowID int64, points []float64) error {
	stmt, err := s.conn.Prepare(`insert into run_utilizations(run, sample, utilization) values (?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, point := range points {
		if err = stmt.Exec(runRowID, i, point); err != nil {
			return err
		}
	}
	return nil
}

// Runs returns the run ids recorded so far, oldest first
func (s *Store) Runs() ([]string, error) {
	stmt, err := s.conn.Prepare(`select run_id from runs order by id`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	var ret []string
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			return ret, nil
		}
		var runID string
		if err = stmt.Scan(&runID); err != nil {
			return nil, err
		}
		ret = append(ret, runID)
	}
}
