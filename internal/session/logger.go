package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/config"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/eval"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/record"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/replay"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/transform"
)

// #region logger
// Logger owns every stream of one recording session: the raw pose stream, the
// one-shot initial transform, the evaluation pair and a replay reader. Output
// files are named once, when the session is created.
type Logger struct {
	paths   Paths
	pose    *record.Writer
	initial *transform.Writer
	eval    *eval.Recorder
	frames  *replay.FrameReader
	logger  *slog.Logger
}

// New creates cfg.OutputDir if needed and prepares the session streams.
// Nothing is written until the first Save call. sink may be nil.
func New(cfg *config.Config, sink eval.Sink, logger *slog.Logger) (*Logger, error) {
	return NewAt(cfg, sink, logger, time.Now())
}

// NewAt is New with the file timestamp fixed to t, so callers can derive the
// same Paths beforehand.
func NewAt(cfg *config.Config, sink eval.Sink, logger *slog.Logger, t time.Time) (*Logger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := NewPaths(cfg.OutputDir, cfg.Files, t)
	l := &Logger{
		paths:   paths,
		pose:    record.NewWriter("pose", paths.Pose, record.PoseColumns),
		initial: transform.NewWriter(paths.InitialTransform),
		eval:    eval.NewRecorder(paths.EvaluationConfig, paths.EvaluationData, cfg.Settings(), sink),
		frames:  replay.NewFrameReader(logger),
		logger:  logger,
	}
	logger.Info("session ready", "pose", paths.Pose, "evaluation", paths.EvaluationData)
	return l, nil
}

// Paths returns the files this session writes.
func (l *Logger) Paths() Paths { return l.paths }

// SavePose appends one sample to the pose stream.
func (l *Logger) SavePose(p pose.Sample) error {
	return l.pose.WriteRow(record.PoseRow(p))
}

// SaveInitialPose writes the initial transform. Only the first call succeeds;
// later calls return record.ErrStreamClosed.
func (l *Logger) SaveInitialPose(p pose.Sample) error {
	return l.initial.Write(p)
}

// SaveEvaluation snapshots stats into the evaluation streams and resets them.
func (l *Logger) SaveEvaluation(stats eval.StatsSource, source eval.NamedSource) error {
	return l.eval.Record(stats, source)
}

// ReadFrame replays k samples from the pose file at path. See replay.FrameReader.
func (l *Logger) ReadFrame(frameIndex, k int, path string) (pose.Frame, bool, error) {
	return l.frames.ReadFrame(frameIndex, k, path)
}

// ReadInitialPose reads the initial transform stored at path.
func (l *Logger) ReadInitialPose(path string) (pose.Sample, error) {
	return transform.ReadInitialPose(path)
}

// Close flushes and closes every stream the session opened.
func (l *Logger) Close() error {
	err := errors.Join(
		l.pose.Close(),
		l.eval.Close(),
		l.frames.Close(),
	)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	l.logger.Info("session closed", "pose", l.paths.Pose)
	return nil
}

// #endregion logger
