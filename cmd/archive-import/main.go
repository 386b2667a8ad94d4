package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/config"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/eval"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/logging"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/record"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/store"
)

// #region main
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, dbPath string
	cmd := &cobra.Command{
		Use:          "archive-import <evaluationConfig.csv> <evaluationData.csv>",
		Short:        "Import an evaluation config/data pair into the run archive",
		Args:         cobra.ExactArgs(2),
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

			runID, rows, err := run(dbPath, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported run %s with %d metrics rows\n", runID, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the run archive (defaults to archive.db_path)")
	return cmd
}

// #endregion main

// #region import

func run(dbPath, configPath, dataPath string) (string, int, error) {
	cfg, err := readConfig(configPath)
	if err != nil {
		return "", 0, err
	}
	metrics, err := readMetrics(dataPath)
	if err != nil {
		return "", 0, err
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		return "", 0, fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	r, err := st.CreateRun(cfg, configPath, dataPath)
	if err != nil {
		return "", 0, err
	}
	for i, m := range metrics {
		if err := logging.LogMetrics(st.DB(), logging.MetricsEntry{RunID: r.RunID, Seq: i, Record: m}); err != nil {
			return r.RunID, i, err
		}
	}
	return r.RunID, len(metrics), nil
}

// readConfig parses the single data row after the header.
func readConfig(path string) (eval.ConfigRecord, error) {
	lines, err := dataLines(path)
	if err != nil {
		return eval.ConfigRecord{}, err
	}
	if len(lines) == 0 {
		return eval.ConfigRecord{}, fmt.Errorf("read config %s: no data row", path)
	}
	return eval.ParseConfigRow(lines[0])
}

func readMetrics(path string) ([]eval.MetricsRecord, error) {
	lines, err := dataLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]eval.MetricsRecord, 0, len(lines))
	for i, line := range lines {
		m, err := eval.ParseMetricsRow(line)
		if err != nil {
			return nil, fmt.Errorf("read metrics %s row %d: %w", path, i+1, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// dataLines returns the non-empty lines of path after its header.
func dataLines(path string) ([]string, error) {
	in, err := record.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var lines []string
	if first, ok := in.PeekLine(); ok && record.IsHeader(first) {
		in.ReadLine()
	}
	for {
		line, ok := in.ReadLine()
		if !ok {
			break
		}
		if len(record.Tokens(line)) > 0 {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// #endregion import

