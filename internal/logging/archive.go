package logging

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/eval"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/store"
)

// ErrNoRun is returned when metrics arrive before the run config.
var ErrNoRun = errors.New("no archived run")

// #region log-metrics
// LogMetrics writes one metrics entry to the evaluation_metrics table.
func LogMetrics(db *sql.DB, entry MetricsEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	aggJSON, err := json.Marshal(entry.Record)
	if err != nil {
		return fmt.Errorf("marshal aggregates: %w", err)
	}

	avg := entry.Record.Avg
	_, err = db.Exec(
		`INSERT INTO evaluation_metrics (run_id, seq, iterations, error_pos, error_rot, time_ms, time_per_iteration, reached, aggregates_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Seq,
		avg.Iterations,
		avg.ErrorPos,
		avg.ErrorRot,
		avg.Time,
		avg.TimePerIteration,
		entry.Record.Reached,
		string(aggJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log metrics: %w", err)
	}
	return nil
}

// #endregion log-metrics

// #region archive
// Archive mirrors an evaluation recorder into the run store. It implements
// eval.Sink: LogConfig opens a run, LogMetrics appends numbered rows to it.
type Archive struct {
	store      *store.Store
	configPath string
	dataPath   string

	runID string
	seq   int
}

// NewArchive returns a sink that records the CSV paths alongside each run.
func NewArchive(s *store.Store, configPath, dataPath string) *Archive {
	return &Archive{store: s, configPath: configPath, dataPath: dataPath}
}

// RunID returns the archived run, empty until LogConfig succeeds.
func (a *Archive) RunID() string { return a.runID }

// LogConfig creates the run row.
func (a *Archive) LogConfig(c eval.ConfigRecord) error {
	run, err := a.store.CreateRun(c, a.configPath, a.dataPath)
	if err != nil {
		return err
	}
	a.runID = run.RunID
	a.seq = 0
	return nil
}

// LogMetrics appends the next metrics row of the current run.
func (a *Archive) LogMetrics(m eval.MetricsRecord) error {
	if a.runID == "" {
		return ErrNoRun
	}
	if err := LogMetrics(a.store.DB(), MetricsEntry{RunID: a.runID, Seq: a.seq, Record: m}); err != nil {
		return err
	}
	a.seq++
	return nil
}

// #endregion archive
