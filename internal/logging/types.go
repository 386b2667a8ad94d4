package logging

import (
	"time"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/eval"
)

// #region metrics-entry
// MetricsEntry is a single row in the evaluation_metrics table.
type MetricsEntry struct {
	RunID     string
	Seq       int
	Record    eval.MetricsRecord
	CreatedAt time.Time
}

// #endregion metrics-entry
