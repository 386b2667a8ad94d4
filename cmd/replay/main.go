package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/config"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/logging"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/replay"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/transform"
)

// #region main
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	file       string
	points     int
	from       int
	max        int
	initial    string
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "replay [file]",
		Short:        "Replay a recorded pose stream frame by frame",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.file = args[0]
			}
			return run(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "path to YAML config")
	f.IntVar(&opts.points, "points", 0, "tracked points per frame (defaults to replay.points)")
	f.IntVar(&opts.from, "from", 0, "first frame to replay")
	f.IntVar(&opts.max, "max", 0, "stop after N frames (0 = until the stream is exhausted)")
	f.StringVar(&opts.initial, "initial", "", "initial transform file to print before the frames")
	f.BoolVar(&opts.jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

// #endregion main

// #region run
func run(cmd *cobra.Command, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if opts.file == "" {
		opts.file = cfg.Replay.File
	}
	if opts.points == 0 {
		opts.points = cfg.Replay.Points
	}
	if opts.file == "" {
		return fmt.Errorf("no pose file: pass one or set replay.file")
	}

	out := cmd.OutOrStdout()
	if opts.initial != "" {
		p, err := transform.ReadInitialPose(opts.initial)
		if err != nil {
			return err
		}
		if !opts.jsonOut {
			fmt.Fprintf(out, "Initial:  pos=(%.4f, %.4f, %.4f) rot=(%.4f, %.4f, %.4f, %.4f)\n\n",
				p.Position.X, p.Position.Y, p.Position.Z,
				p.Orientation.Imag, p.Orientation.Jmag, p.Orientation.Kmag, p.Orientation.Real)
		}
	}

	reader := replay.NewFrameReader(logger)
	defer reader.Close()

	results, err := replay.Run(reader, opts.file, opts.points, opts.from, opts.max)
	if err != nil {
		return err
	}
	summary := replay.Summarize(results)

	if opts.jsonOut {
		return printJSON(out, results, summary)
	}
	printTable(out, results, summary)
	return nil
}

// #endregion run

// #region output
type frameJSON struct {
	Index    int          `json:"index"`
	Complete bool         `json:"complete"`
	Points   [][7]float64 `json:"points"`
}

func printJSON(w io.Writer, results []replay.Result, summary replay.Summary) error {
	frames := make([]frameJSON, len(results))
	for i, r := range results {
		fj := frameJSON{Index: r.Index, Complete: r.Complete}
		for _, s := range r.Frame {
			fj.Points = append(fj.Points, s.Fields())
		}
		frames[i] = fj
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Frames  []frameJSON    `json:"frames"`
		Summary replay.Summary `json:"summary"`
	}{frames, summary})
}

func printTable(w io.Writer, results []replay.Result, summary replay.Summary) {
	fmt.Fprintf(w, "%-6s| %-6s| %-9s| %s\n", "Frame", "Point", "Complete", "Position")
	fmt.Fprintf(w, "%-6s+%-7s+%-10s+%s\n", "------", "-------", "----------", "------------------------------")

	for _, r := range results {
		complete := "yes"
		if !r.Complete {
			complete = "no"
		}
		for j, s := range r.Frame {
			fmt.Fprintf(w, "%-6d| %-6d| %-9s| (%.4f, %.4f, %.4f)\n",
				r.Index, j, complete, s.Position.X, s.Position.Y, s.Position.Z)
		}
	}

	fmt.Fprintf(w, "\nSummary: %d frames, %d complete, %d incomplete, %d points/frame\n",
		summary.TotalFrames, summary.Complete, summary.Incomplete, summary.Points)
}

// #endregion output
