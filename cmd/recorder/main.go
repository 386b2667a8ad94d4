package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/config"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/eval"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/logging"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/record"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/session"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/stats"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/store"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/telemetry"
)

// #region main
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "recorder",
		Short:        "Record tracked poses and solver statistics to CSV streams",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "path to YAML config (defaults + POSETRACK_* env when empty)")

	root.AddCommand(newPosesCmd())
	root.AddCommand(newEvaluateCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// #endregion main

// #region poses
func newPosesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poses",
		Short: "Read pose lines (x;y;z;qx;qy;qz;qw) from stdin into the pose stream",
		Long: "Each stdin line is one pose sample. The first sample is also written\n" +
			"as the session's initial transform.",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer env.close()

			n, err := recordPoses(env.session, cmd.InOrStdin(), env.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %d poses to %s\n", n, env.session.Paths().Pose)
			return nil
		},
	}
	return cmd
}

// recordPoses saves every parsable line of in. Header lines are skipped and
// unparsable lines are logged and dropped.
func recordPoses(s *session.Logger, in io.Reader, logger *slog.Logger) (int, error) {
	scanner := bufio.NewScanner(in)
	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || record.IsHeader(line) {
			continue
		}
		p := pose.Neutral()
		if err := record.ParseLine(line, &p); err != nil {
			logger.Warn("skipping pose line", "err", err)
			continue
		}
		if n == 0 {
			if err := s.SaveInitialPose(p); err != nil {
				return n, err
			}
		}
		if err := s.SavePose(p); err != nil {
			return n, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("read stdin: %w", err)
	}
	return n, nil
}

// #endregion poses

// #region evaluate
type sourceName string

func (s sourceName) Name() string { return string(s) }

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Read solver outcomes (iterations;errorPos;errorRot;ms;reached) from stdin",
		Long: "Outcomes accumulate in a statistics holder. Every --every outcomes, and\n" +
			"once more at end of input, one metrics row is recorded and the holder is reset.",
		RunE: func(cmd *cobra.Command, args []string) error {
			every, _ := cmd.Flags().GetInt("every")
			source, _ := cmd.Flags().GetString("source")
			if every <= 0 {
				return errors.New("--every must be positive")
			}

			env, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer env.close()

			if source == "" {
				source = env.cfg.Replay.File
			}
			rows, err := recordOutcomes(env.session, cmd.InOrStdin(), sourceName(source), every, env.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %d metrics rows to %s\n", rows, env.session.Paths().EvaluationData)
			return nil
		},
	}
	cmd.Flags().Int("every", 10, "outcomes per metrics row")
	cmd.Flags().String("source", "", "name recorded as the evaluated file (defaults to replay.file)")
	return cmd
}

// recordOutcomes feeds solver outcomes into a holder and records a metrics
// row every `every` outcomes plus one for any remainder.
func recordOutcomes(s *session.Logger, in io.Reader, source eval.NamedSource, every int, logger *slog.Logger) (int, error) {
	holder := stats.NewHolder()
	scanner := bufio.NewScanner(in)
	rows := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || record.IsHeader(line) {
			continue
		}
		solve, err := parseSolve(line)
		if err != nil {
			logger.Warn("skipping outcome line", "err", err)
			continue
		}
		holder.Observe(solve)
		if holder.Len() >= every {
			if err := s.SaveEvaluation(holder, source); err != nil {
				return rows, err
			}
			rows++
		}
	}
	if err := scanner.Err(); err != nil {
		return rows, fmt.Errorf("read stdin: %w", err)
	}
	if holder.Len() > 0 {
		if err := s.SaveEvaluation(holder, source); err != nil {
			return rows, err
		}
		rows++
	}
	return rows, nil
}

// #endregion evaluate

// #region config
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// #endregion config

// #region setup
type runEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	session *session.Logger
	store   *store.Store
	server  *http.Server
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// setup loads config, starts the optional metrics endpoint and opens a
// session. When archive is set and archive.db_path is configured, evaluation
// rows are mirrored into the run store.
func setup(cmd *cobra.Command, archive bool) (*runEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	env := &runEnv{cfg: cfg, logger: logger}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		env.server = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := env.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "err", err)
			}
		}()
		logger.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	var sink eval.Sink
	now := time.Now()
	paths := session.NewPaths(cfg.OutputDir, cfg.Files, now)
	if archive && cfg.Archive.DBPath != "" {
		st, err := store.NewStore(cfg.Archive.DBPath)
		if err != nil {
			env.close()
			return nil, err
		}
		env.store = st
		sink = logging.NewArchive(st, paths.EvaluationConfig, paths.EvaluationData)
	}

	s, err := session.NewAt(cfg, sink, logger, now)
	if err != nil {
		env.close()
		return nil, err
	}
	env.session = s
	return env, nil
}

func (e *runEnv) close() {
	if e.session != nil {
		if err := e.session.Close(); err != nil {
			e.logger.Error("close session", "err", err)
		}
	}
	if e.store != nil {
		e.store.Close()
	}
	if e.server != nil {
		e.server.Close()
	}
}

// #endregion setup
