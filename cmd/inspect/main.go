package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/config"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/store"
)

// #region main
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		dbPath     string
		last       int
		runID      string
		jsonOut    bool
	)
	cmd := &cobra.Command{
		Use:          "inspect",
		Short:        "Inspect archived evaluation runs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				dbPath = cfg.Archive.DBPath
			}
			if dbPath == "" {
				return fmt.Errorf("no archive: pass --db or set archive.db_path")
			}

			st, err := store.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				return runDetailMode(out, st, runID, jsonOut)
			}
			return runListMode(out, st, last, jsonOut)
		},
	}
	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "path to YAML config")
	f.StringVar(&dbPath, "db", "", "path to the run archive (defaults to archive.db_path)")
	f.IntVar(&last, "last", 20, "show N most recent runs")
	f.StringVar(&runID, "run", "", "show single run detail")
	f.BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID       string  `json:"run_id"`
	Mode        int     `json:"ik_mode"`
	File        string  `json:"file"`
	Lambda      float64 `json:"lambda"`
	Rows        int     `json:"rows"`
	MeanReached float64 `json:"mean_reached"`
	CreatedAt   string  `json:"created_at"`
}

func runListMode(w io.Writer, st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs found")
		return nil
	}

	// Store returns newest first; print chronologically.
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[len(runs)-1-i] = listRow{
			RunID:       r.RunID,
			Mode:        r.Config.Mode,
			File:        r.Config.File,
			Lambda:      r.Config.Lambda,
			Rows:        r.Rows,
			MeanReached: r.MeanReached,
			CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(w, rows)
	}
	fmt.Fprintf(w, "%-10s  %4s  %-20s  %8s  %5s  %9s  %s\n",
		"Run", "Mode", "File", "Lambda", "Rows", "Reached%", "Time")
	fmt.Fprintf(w, "%-10s+-%4s+-%-20s+-%8s+-%5s+-%9s+-%s\n",
		"----------", "----", "--------------------", "--------", "-----", "---------", "--------------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s  %4d  %-20s  %8.4f  %5d  %9.2f  %s\n",
			shortID(r.RunID), r.Mode, r.File, r.Lambda, r.Rows, r.MeanReached, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID           string       `json:"run_id"`
	Mode            int          `json:"ik_mode"`
	WithOrientation bool         `json:"with_orientation"`
	File            string       `json:"file"`
	Lambda          float64      `json:"lambda"`
	ErrorPosMax     float64      `json:"error_pos_max"`
	ErrorRotMax     float64      `json:"error_rot_max"`
	MaxSteps        int          `json:"max_steps"`
	ConfigPath      string       `json:"config_path"`
	DataPath        string       `json:"data_path"`
	CreatedAt       string       `json:"created_at"`
	Metrics         []metricsRow `json:"metrics"`
}

type metricsRow struct {
	Seq        int     `json:"seq"`
	Iterations float64 `json:"iterations"`
	ErrorPos   float64 `json:"error_pos"`
	ErrorRot   float64 `json:"error_rot"`
	TimeMs     float64 `json:"time_ms"`
	Reached    float64 `json:"reached"`
}

func runDetailMode(w io.Writer, st *store.Store, runID string, jsonOut bool) error {
	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	metrics, err := st.ListMetrics(runID)
	if err != nil {
		return err
	}

	c := run.Config
	out := detailOutput{
		RunID:           run.RunID,
		Mode:            c.Mode,
		WithOrientation: c.WithOrientation,
		File:            c.File,
		Lambda:          c.Lambda,
		ErrorPosMax:     c.ErrorPosMax,
		ErrorRotMax:     c.ErrorRotMax,
		MaxSteps:        c.MaxSteps,
		ConfigPath:      run.ConfigPath,
		DataPath:        run.DataPath,
		CreatedAt:       run.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	for _, m := range metrics {
		out.Metrics = append(out.Metrics, metricsRow{
			Seq:        m.Seq,
			Iterations: m.Record.Avg.Iterations,
			ErrorPos:   m.Record.Avg.ErrorPos,
			ErrorRot:   m.Record.Avg.ErrorRot,
			TimeMs:     m.Record.Avg.Time,
			Reached:    m.Record.Reached,
		})
	}

	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Run:         %s\n", out.RunID)
	fmt.Fprintf(w, "Created:     %s\n", out.CreatedAt)
	fmt.Fprintf(w, "File:        %s\n", out.File)
	fmt.Fprintf(w, "IK Mode:     %d (lambda %.4f)\n", out.Mode, out.Lambda)
	fmt.Fprintf(w, "Orientation: %v\n", out.WithOrientation)
	fmt.Fprintf(w, "Thresholds:  pos %.4f  rot %.4f  steps %d\n", out.ErrorPosMax, out.ErrorRotMax, out.MaxSteps)
	fmt.Fprintf(w, "Streams:     %s, %s\n", out.ConfigPath, out.DataPath)

	fmt.Fprintf(w, "\nMetrics (avg per row):\n")
	fmt.Fprintf(w, "  %4s  %10s  %10s  %10s  %10s  %8s\n", "Seq", "Iters", "ErrPos", "ErrRot", "Time ms", "Reached%")
	for _, m := range out.Metrics {
		fmt.Fprintf(w, "  %4d  %10.2f  %10.5f  %10.5f  %10.3f  %8.2f\n",
			m.Seq, m.Iterations, m.ErrorPos, m.ErrorRot, m.TimeMs, m.Reached)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
