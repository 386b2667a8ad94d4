package replay

import (
	"fmt"
	"log/slog"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/record"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/telemetry"
)

// #region frame-reader
// FrameReader replays a pose stream k lines at a time. It owns the only
// cursor over the stream: the count of data lines consumed since the stream
// was opened. The cursor never decreases except when the stream is exhausted,
// at which point the handle is closed and the cursor returns to zero so the
// next call at index 0 starts over.
type FrameReader struct {
	in     *record.Reader
	cursor int
	logger *slog.Logger
}

// NewFrameReader returns a closed reader. A nil logger uses slog.Default().
func NewFrameReader(logger *slog.Logger) *FrameReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameReader{logger: logger}
}

// Cursor returns the number of data lines consumed from the open stream.
func (fr *FrameReader) Cursor() int { return fr.cursor }

// IsOpen reports whether a stream is currently open.
func (fr *FrameReader) IsOpen() bool { return fr.in != nil }

// ReadFrame returns k samples starting at data line frameIndex, or at the
// cursor if the cursor is already past it. Lines between the cursor and
// frameIndex are skipped. Points that could not be read keep the neutral pose;
// complete reports whether the last point was read. path is only used to open
// the stream when none is open.
func (fr *FrameReader) ReadFrame(frameIndex, k int, path string) (pose.Frame, bool, error) {
	if k < 0 {
		return nil, false, fmt.Errorf("read frame: negative point count %d", k)
	}
	if fr.in == nil {
		if err := fr.open(path); err != nil {
			return nil, false, err
		}
	}

	// Catch up to frameIndex. Never moves backward.
	for frameIndex > fr.cursor {
		if _, ok := fr.in.ReadLine(); !ok {
			break
		}
		fr.cursor++
	}

	frame := pose.NewFrame(k)
	complete := true
	for i := range frame {
		line, ok := fr.in.ReadLine()
		if !ok {
			complete = false
			break
		}
		fr.cursor++
		if err := record.ParseLine(line, &frame[i]); err != nil {
			return nil, false, fmt.Errorf("read frame %d point %d: %w", frameIndex, i, err)
		}
	}

	if complete {
		telemetry.FramesRead.WithLabelValues("complete").Inc()
	} else {
		telemetry.FramesRead.WithLabelValues("incomplete").Inc()
		fr.logger.Debug("incomplete frame", "path", path, "frame", frameIndex, "points", k)
	}

	if fr.in.EOF() {
		readErr := fr.in.Err()
		if err := fr.rewind(); err != nil {
			return frame, complete, err
		}
		if readErr != nil {
			fr.logger.Warn("replay stream read failed", "path", path, "err", readErr)
			return frame, complete, fmt.Errorf("read frame %d: %w", frameIndex, readErr)
		}
	}
	return frame, complete, nil
}

// Close releases the stream and resets the cursor.
func (fr *FrameReader) Close() error {
	if fr.in == nil {
		return nil
	}
	return fr.release()
}

func (fr *FrameReader) open(path string) error {
	in, err := record.OpenReader(path)
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	fr.in = in
	fr.cursor = 0
	fr.skipHeader()
	fr.logger.Debug("replay stream opened", "path", path)
	return nil
}

// skipHeader consumes a leading column header. The header is not a data line
// and does not advance the cursor.
func (fr *FrameReader) skipHeader() {
	line, ok := fr.in.PeekLine()
	if ok && record.IsHeader(line) {
		fr.in.ReadLine()
	}
}

func (fr *FrameReader) rewind() error {
	telemetry.StreamRewinds.Inc()
	fr.logger.Debug("replay stream exhausted, cursor reset")
	return fr.release()
}

func (fr *FrameReader) release() error {
	err := fr.in.Close()
	fr.in = nil
	fr.cursor = 0
	if err != nil {
		return fmt.Errorf("close replay stream: %w", err)
	}
	return nil
}

// #endregion frame-reader
