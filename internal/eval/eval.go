package eval

import (
	"fmt"
	"strconv"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/record"
)

// #region recorder
// Recorder writes the evaluation config once and one metrics row per solver
// invocation. The config and metrics streams share one initialized flag.
type Recorder struct {
	settings    Settings
	config      *record.Writer
	metrics     *record.Writer
	sink        Sink
	initialized bool

	// init steps that already succeeded; a failed first Record resumes after them
	snapshot      ConfigRecord
	configWritten bool
	sinkNotified  bool
}

// NewRecorder creates a recorder. sink may be nil.
func NewRecorder(configPath, metricsPath string, settings Settings, sink Sink) *Recorder {
	return &Recorder{
		settings: settings,
		config:   record.NewWriter("evaluation_config", configPath, ConfigColumns),
		metrics:  record.NewWriter("evaluation_data", metricsPath, MetricsColumns),
		sink:     sink,
	}
}

// Record appends the current statistics of stats and then resets them. The
// first call also writes the config snapshot naming source and the metrics
// header. Statistics are only reset once the row has been written.
func (r *Recorder) Record(stats StatsSource, source NamedSource) error {
	if !r.initialized {
		if err := r.init(source); err != nil {
			return err
		}
	}

	m := stats.Snapshot()
	if err := r.metrics.WriteRow(MetricsRow(m)); err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	if r.sink != nil {
		if err := r.sink.LogMetrics(m); err != nil {
			return fmt.Errorf("record evaluation sink: %w", err)
		}
	}
	stats.Reset()
	return nil
}

// Close closes the metrics stream.
func (r *Recorder) Close() error {
	return r.metrics.Close()
}

func (r *Recorder) init(source NamedSource) error {
	if !r.configWritten {
		cfg, err := BuildConfig(r.settings, source.Name())
		if err != nil {
			return err
		}
		if err := r.config.WriteRow(ConfigRow(cfg)); err != nil {
			return fmt.Errorf("record evaluation config: %w", err)
		}
		if err := r.config.Close(); err != nil {
			return err
		}
		r.snapshot = cfg
		r.configWritten = true
	}
	if err := r.metrics.WriteHeader(); err != nil {
		return fmt.Errorf("record evaluation header: %w", err)
	}
	if r.sink != nil && !r.sinkNotified {
		if err := r.sink.LogConfig(r.snapshot); err != nil {
			return fmt.Errorf("record evaluation sink: %w", err)
		}
		r.sinkNotified = true
	}
	r.initialized = true
	return nil
}

// BuildConfig resolves the damping parameter for the configured mode.
func BuildConfig(s Settings, file string) (ConfigRecord, error) {
	if s.Mode < 0 || s.Mode >= len(s.Lambda) {
		return ConfigRecord{}, fmt.Errorf("build config: mode %d with %d lambdas: %w", s.Mode, len(s.Lambda), ErrModeOutOfRange)
	}
	return ConfigRecord{
		Mode:            s.Mode,
		WithOrientation: s.WithOrientation,
		File:            file,
		Lambda:          s.Lambda[s.Mode],
		ErrorPosMax:     s.ErrorPosMax,
		ErrorRotMax:     s.ErrorRotMax,
		MaxSteps:        s.MaxSteps,
	}, nil
}

// #endregion recorder

// #region rows
// ConfigRow renders c with the trailing delimiter of the config format.
func ConfigRow(c ConfigRecord) []string {
	return []string{
		strconv.Itoa(c.Mode),
		record.FormatBool(c.WithOrientation),
		c.File,
		record.FormatFloat(c.Lambda),
		record.FormatFloat(c.ErrorPosMax),
		record.FormatFloat(c.ErrorRotMax),
		strconv.Itoa(c.MaxSteps),
		"",
	}
}

// MetricsRow renders m as avg, min and max groups followed by the reached percentage.
func MetricsRow(m MetricsRecord) []string {
	row := make([]string, 0, len(MetricsColumns))
	for _, a := range []Aggregate{m.Avg, m.Min, m.Max} {
		row = append(row,
			record.FormatFloat(a.Iterations),
			record.FormatFloat(a.ErrorPos),
			record.FormatFloat(a.ErrorRot),
			record.FormatFloat(a.Time),
			record.FormatFloat(a.TimePerIteration),
		)
	}
	return append(row, record.FormatFloat(m.Reached), "")
}

// ParseConfigRow reads a config data line back into a ConfigRecord.
func ParseConfigRow(line string) (ConfigRecord, error) {
	toks := record.Tokens(line)
	if len(toks) < len(ConfigColumns) {
		return ConfigRecord{}, fmt.Errorf("parse config row: %d fields, want %d", len(toks), len(ConfigColumns))
	}
	var c ConfigRecord
	p := fieldParser{line: line, toks: toks}
	c.Mode = p.asInt(0)
	c.WithOrientation = p.asInt(1) != 0
	c.File = toks[2]
	c.Lambda = p.asFloat(3)
	c.ErrorPosMax = p.asFloat(4)
	c.ErrorRotMax = p.asFloat(5)
	c.MaxSteps = p.asInt(6)
	if p.err != nil {
		return ConfigRecord{}, fmt.Errorf("parse config row: %w", p.err)
	}
	return c, nil
}

// ParseMetricsRow reads a metrics data line back into a MetricsRecord.
func ParseMetricsRow(line string) (MetricsRecord, error) {
	toks := record.Tokens(line)
	want := len(MetricsColumns) - 1
	if len(toks) < want {
		return MetricsRecord{}, fmt.Errorf("parse metrics row: %d fields, want %d", len(toks), want)
	}
	p := fieldParser{line: line, toks: toks}
	var m MetricsRecord
	for g, a := range []*Aggregate{&m.Avg, &m.Min, &m.Max} {
		base := g * 5
		a.Iterations = p.asFloat(base)
		a.ErrorPos = p.asFloat(base + 1)
		a.ErrorRot = p.asFloat(base + 2)
		a.Time = p.asFloat(base + 3)
		a.TimePerIteration = p.asFloat(base + 4)
	}
	m.Reached = p.asFloat(15)
	if p.err != nil {
		return MetricsRecord{}, fmt.Errorf("parse metrics row: %w", p.err)
	}
	return m, nil
}

// fieldParser converts tokens and keeps the first failure.
type fieldParser struct {
	line string
	toks []string
	err  error
}

func (p *fieldParser) asFloat(i int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.toks[i], 64)
	if err != nil {
		p.err = &record.ParseError{Line: p.line, Column: i, Err: err}
	}
	return v
}

func (p *fieldParser) asInt(i int) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.toks[i])
	if err != nil {
		p.err = &record.ParseError{Line: p.line, Column: i, Err: err}
	}
	return v
}

// #endregion rows
