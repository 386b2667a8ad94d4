package transform

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/record"
)

// Columns is the header of the initial-transform stream.
var Columns = []string{"initPosX", "initPosY", "initPosZ", "initRotX", "initRotY", "initRotZ", "initRotW"}

// ErrNoInitialPose is returned when the file has no data line after its header.
var ErrNoInitialPose = errors.New("no initial pose record")

// #region writer
// Writer is a single-record stream: the first Write emits header and row and
// closes the file, later writes fail with record.ErrStreamClosed.
type Writer struct {
	stream *record.Writer
}

// NewWriter returns a one-shot writer for path. Nothing is created until Write.
func NewWriter(path string) *Writer {
	return &Writer{stream: record.NewWriter("initial_transform", path, Columns)}
}

// Write appends the header and one pose row, then closes the stream.
func (w *Writer) Write(p pose.Sample) error {
	if err := w.stream.WriteRow(record.PoseRow(p)); err != nil {
		return errors.Join(fmt.Errorf("write initial pose: %w", err), w.stream.Close())
	}
	return w.stream.Close()
}

// Path returns the file the writer targets.
func (w *Writer) Path() string { return w.stream.Path() }

// WriteInitialPose writes p to a fresh stream at path and closes it.
func WriteInitialPose(path string, p pose.Sample) error {
	return NewWriter(path).Write(p)
}

// #endregion writer

// #region reader
// ReadInitialPose reads the record after the header of path. Each call opens
// its own handle and keeps no state, so repeated calls on an unchanged file
// return the same pose. Columns missing from the record keep the neutral pose.
func ReadInitialPose(path string) (pose.Sample, error) {
	in, err := record.OpenReader(path)
	if err != nil {
		return pose.Sample{}, fmt.Errorf("read initial pose: %w", err)
	}
	defer in.Close()

	// First line is the header and is discarded unconditionally.
	in.ReadLine()

	line, ok := in.ReadLine()
	if !ok {
		return pose.Sample{}, fmt.Errorf("read initial pose %s: %w", path, ErrNoInitialPose)
	}
	p := pose.Neutral()
	if err := record.ParseLine(line, &p); err != nil {
		return pose.Sample{}, fmt.Errorf("read initial pose %s: %w", path, err)
	}
	return p, nil
}

// #endregion reader
