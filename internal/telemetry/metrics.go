package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// #region counters
var (
	// RowsWritten counts data and header rows appended, by stream name.
	RowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posetrack_rows_written_total",
		Help: "Rows appended to record streams, by stream",
	}, []string{"stream"})

	// FramesRead counts ReadFrame calls by result (complete | incomplete).
	FramesRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posetrack_frames_read_total",
		Help: "Frames returned by the frame reader, by result",
	}, []string{"result"})

	// StreamRewinds counts exhaustion-driven cursor resets.
	StreamRewinds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posetrack_stream_rewinds_total",
		Help: "Replay streams closed on exhaustion with the cursor reset to zero",
	})

	// ParseErrors counts lines that failed numeric conversion.
	ParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posetrack_parse_errors_total",
		Help: "Record lines rejected by the line parser",
	})
)

// #endregion counters

// #region handler
// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// #endregion handler
