package record

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/telemetry"
)

// Delimiter separates fields in every stream. Fields are not escaped.
const Delimiter = ";"

// ErrStreamClosed is returned when writing to a stream after Close.
var ErrStreamClosed = errors.New("stream closed")

// #region stream-state
type streamState int

const (
	stateUnopened streamState = iota
	stateHeaderPending
	stateActive
	stateClosed
)

// #endregion stream-state

// #region writer
// Writer is an append-only record sink. The header is emitted only on the
// transition from header-pending to active, so it appears at most once for the
// writer's lifetime. Every row is flushed before WriteRow returns.
type Writer struct {
	name   string
	path   string
	header []string

	state streamState
	file  *os.File
	buf   *bufio.Writer
}

// NewWriter returns an unopened writer. name labels the stream in metrics and logs.
func NewWriter(name, path string, header []string) *Writer {
	return &Writer{name: name, path: path, header: header}
}

// Path returns the file path the writer appends to.
func (w *Writer) Path() string { return w.path }

// Open creates or appends to the file. Opening an already open writer is a no-op.
func (w *Writer) Open() error {
	switch w.state {
	case stateClosed:
		return ErrStreamClosed
	case stateHeaderPending, stateActive:
		return nil
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open stream %s: %w", w.path, err)
	}
	w.file = f
	w.buf = bufio.NewWriter(f)
	w.state = stateHeaderPending
	return nil
}

// WriteHeader writes the column header if it has not been written yet.
func (w *Writer) WriteHeader() error {
	if err := w.Open(); err != nil {
		return err
	}
	if w.state != stateHeaderPending {
		return nil
	}
	if err := w.writeLine(w.header); err != nil {
		return fmt.Errorf("write header %s: %w", w.name, err)
	}
	w.state = stateActive
	return nil
}

// WriteRow appends one delimited row, writing the header first if needed.
func (w *Writer) WriteRow(fields []string) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.writeLine(fields); err != nil {
		return fmt.Errorf("write row %s: %w", w.name, err)
	}
	return nil
}

// Close flushes and closes the file. A closed writer cannot be reopened.
func (w *Writer) Close() error {
	if w.state == stateClosed {
		return nil
	}
	prev := w.state
	w.state = stateClosed
	if prev == stateUnopened {
		return nil
	}
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	w.file, w.buf = nil, nil
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", w.name, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", w.name, closeErr)
	}
	return nil
}

func (w *Writer) writeLine(fields []string) error {
	if _, err := w.buf.WriteString(strings.Join(fields, Delimiter)); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	telemetry.RowsWritten.WithLabelValues(w.name).Inc()
	return nil
}

// #endregion writer

// #region formatting
// FormatFloat renders v in the shortest form that parses back to the same value.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatBool renders b as 1 or 0.
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// #endregion formatting

// #region pose-row
// PoseColumns is the header of the raw pose stream.
var PoseColumns = []string{"rawPosX", "rawPosY", "rawPosZ", "rawRotX", "rawRotY", "rawRotZ", "rawRotW"}

// PoseRow renders a sample as its seven delimited fields.
func PoseRow(s pose.Sample) []string {
	vals := s.Fields()
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = FormatFloat(v)
	}
	return row
}

// #endregion pose-row
