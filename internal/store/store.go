package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/eval"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id            TEXT PRIMARY KEY,
	ik_mode           INTEGER NOT NULL,
	with_orientation  INTEGER NOT NULL,
	file              TEXT NOT NULL,
	lambda            REAL NOT NULL,
	error_pos_max     REAL NOT NULL,
	error_rot_max     REAL NOT NULL,
	steps_max         INTEGER NOT NULL,
	config_path       TEXT,
	data_path         TEXT,
	created_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluation_metrics (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id              TEXT NOT NULL,
	seq                 INTEGER NOT NULL,
	iterations          REAL NOT NULL,
	error_pos           REAL NOT NULL,
	error_rot           REAL NOT NULL,
	time_ms             REAL NOT NULL,
	time_per_iteration  REAL NOT NULL,
	reached             REAL NOT NULL,
	aggregates_json     TEXT NOT NULL,
	created_at          TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id),
	UNIQUE (run_id, seq)
);
`

// #endregion schema

// #region types
// Run is one archived evaluation run.
type Run struct {
	RunID      string
	Config     eval.ConfigRecord
	ConfigPath string
	DataPath   string
	CreatedAt  time.Time
}

// RunSummary pairs a run with its metric row count and mean reached percentage.
type RunSummary struct {
	Run
	Rows        int
	MeanReached float64
}

// Metrics is one archived metrics row.
type Metrics struct {
	RunID     string
	Seq       int
	Record    eval.MetricsRecord
	CreatedAt time.Time
}

// #endregion types

// #region store-struct
// Store archives evaluation runs in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region create-run
// CreateRun archives a config record under a fresh run ID.
func (s *Store) CreateRun(cfg eval.ConfigRecord, configPath, dataPath string) (Run, error) {
	run := Run{
		RunID:      uuid.New().String(),
		Config:     cfg,
		ConfigPath: configPath,
		DataPath:   dataPath,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, ik_mode, with_orientation, file, lambda, error_pos_max, error_rot_max, steps_max, config_path, data_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, cfg.Mode, boolInt(cfg.WithOrientation), cfg.File, cfg.Lambda,
		cfg.ErrorPosMax, cfg.ErrorRotMax, cfg.MaxSteps,
		configPath, dataPath, run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// #endregion create-run

// #region get-run
// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, ik_mode, with_orientation, file, lambda, error_pos_max, error_rot_max, steps_max, config_path, data_path, created_at
		 FROM runs WHERE run_id = ?`, id,
	)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs with their metric row counts.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	rows, err := s.db.Query(
		`SELECT r.run_id, r.ik_mode, r.with_orientation, r.file, r.lambda, r.error_pos_max, r.error_rot_max, r.steps_max,
		        r.config_path, r.data_path, r.created_at,
		        COUNT(m.id), COALESCE(AVG(m.reached), 0)
		 FROM runs r LEFT JOIN evaluation_metrics m ON m.run_id = r.run_id
		 GROUP BY r.run_id
		 ORDER BY r.created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var withOrient int
		var cfgPath, dataPath sql.NullString
		var createdStr string
		c := &rs.Config
		if err := rows.Scan(&rs.RunID, &c.Mode, &withOrient, &c.File, &c.Lambda, &c.ErrorPosMax, &c.ErrorRotMax, &c.MaxSteps,
			&cfgPath, &dataPath, &createdStr, &rs.Rows, &rs.MeanReached); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		c.WithOrientation = withOrient != 0
		rs.ConfigPath = cfgPath.String
		rs.DataPath = dataPath.String
		rs.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// #endregion list-runs

// #region list-metrics
// ListMetrics returns a run's metric rows in write order.
func (s *Store) ListMetrics(runID string) ([]Metrics, error) {
	rows, err := s.db.Query(
		`SELECT run_id, seq, aggregates_json, created_at FROM evaluation_metrics
		 WHERE run_id = ? ORDER BY seq ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	var out []Metrics
	for rows.Next() {
		var m Metrics
		var aggJSON, createdStr string
		if err := rows.Scan(&m.RunID, &m.Seq, &aggJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		if err := json.Unmarshal([]byte(aggJSON), &m.Record); err != nil {
			return nil, fmt.Errorf("unmarshal aggregates: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, m)
	}
	return out, rows.Err()
}

// #endregion list-metrics

// #region helpers
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var withOrient int
	var cfgPath, dataPath sql.NullString
	var createdStr string
	c := &run.Config
	err := row.Scan(&run.RunID, &c.Mode, &withOrient, &c.File, &c.Lambda, &c.ErrorPosMax, &c.ErrorRotMax, &c.MaxSteps,
		&cfgPath, &dataPath, &createdStr)
	if err != nil {
		return Run{}, err
	}
	c.WithOrientation = withOrient != 0
	run.ConfigPath = cfgPath.String
	run.DataPath = dataPath.String
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
