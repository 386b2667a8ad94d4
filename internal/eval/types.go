package eval

import "errors"

// ErrModeOutOfRange is returned when the solver mode has no damping entry.
var ErrModeOutOfRange = errors.New("ik mode out of range")

// #region columns
// ConfigColumns is the header of the evaluation config stream.
var ConfigColumns = []string{"IK Mode", "with Orientation", "File", "lambda", "Error Pos Max", "Error Rot Max", "Steps Max"}

// MetricsColumns is the header of the evaluation metrics stream. The final
// empty column produces the trailing delimiter of the on-disk format.
var MetricsColumns = []string{
	"Iterations", "Error Pos", "Error Rot", "Time", "Time/Iteration",
	"Iterations Min", "Error Pos Min", "Error Rot Min", "Time Min", "Time/Iteration Min",
	"Iterations Max", "Error Pos Max", "Error Rot Max", "Time Max", "Time/Iteration Max",
	"Reached [%]", "",
}

// #endregion columns

// #region settings
// Settings is the solver configuration captured once per run.
type Settings struct {
	Mode            int
	WithOrientation bool
	Lambda          []float64 // damping per mode
	ErrorPosMax     float64
	ErrorRotMax     float64
	MaxSteps        int
}

// #endregion settings

// #region config-record
// ConfigRecord is the single row of the evaluation config stream.
type ConfigRecord struct {
	Mode            int
	WithOrientation bool
	File            string
	Lambda          float64
	ErrorPosMax     float64
	ErrorRotMax     float64
	MaxSteps        int
}

// #endregion config-record

// #region metrics-record
// Aggregate holds one of the avg/min/max reductions of solver statistics.
type Aggregate struct {
	Iterations       float64
	ErrorPos         float64
	ErrorRot         float64
	Time             float64
	TimePerIteration float64
}

// MetricsRecord is one row of the evaluation metrics stream.
type MetricsRecord struct {
	Avg     Aggregate
	Min     Aggregate
	Max     Aggregate
	Reached float64 // percent
}

// #endregion metrics-record

// #region collaborators
// StatsSource holds solver statistics accumulated since the last Reset.
// Callers take a Snapshot and then Reset; the order is part of the contract.
type StatsSource interface {
	Snapshot() MetricsRecord
	Reset()
}

// NamedSource identifies the data a run was driven from.
type NamedSource interface {
	Name() string
}

// Sink receives the same records written to the evaluation streams.
type Sink interface {
	LogConfig(ConfigRecord) error
	LogMetrics(MetricsRecord) error
}

// #endregion collaborators
