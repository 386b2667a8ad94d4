package transform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/record"
)

func samplePose() pose.Sample {
	return pose.Sample{
		Position:    r3.Vec{X: 0.12, Y: 1.65, Z: -0.4},
		Orientation: quat.Number{Real: 0.9238795, Jmag: 0.3826834},
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "init.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "initTransRot.csv")
	if err := WriteInitialPose(path, samplePose()); err != nil {
		t.Fatalf("WriteInitialPose: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "initPosX;initPosY;initPosZ;initRotX;initRotY;initRotZ;initRotW" {
		t.Errorf("unexpected header %q", lines[0])
	}

	got, err := ReadInitialPose(path)
	if err != nil {
		t.Fatalf("ReadInitialPose: %v", err)
	}
	if got != samplePose() {
		t.Errorf("expected %+v, got %+v", samplePose(), got)
	}
	again, err := ReadInitialPose(path)
	if err != nil || again != got {
		t.Errorf("expected repeat read to match, got %+v err=%v", again, err)
	}
}

func TestWriter_SecondWriteFails(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "init.csv"))
	if err := w.Write(samplePose()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(pose.Neutral()); !errors.Is(err, record.ErrStreamClosed) {
		t.Errorf("expected ErrStreamClosed, got %v", err)
	}
}

func TestWriter_FailedWriteClosesStream(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "later")
	w := NewWriter(filepath.Join(dir, "init.csv"))
	if err := w.Write(samplePose()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}

	// the stream stays closed even once the path becomes writable
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(samplePose()); !errors.Is(err, record.ErrStreamClosed) {
		t.Errorf("expected ErrStreamClosed after failed write, got %v", err)
	}
	if _, err := os.Stat(w.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no file written, stat err=%v", err)
	}
}

func TestReadInitialPose_ShortRecordKeepsNeutral(t *testing.T) {
	got, err := ReadInitialPose(writeFile(t, "h\n1;2;3\n"))
	if err != nil {
		t.Fatalf("ReadInitialPose: %v", err)
	}
	want := [pose.FieldCount]float64{1, 2, 3, 0, 0, 0, 1}
	if got.Fields() != want {
		t.Errorf("expected %v, got %v", want, got.Fields())
	}
}

func TestReadInitialPose_IgnoresLaterLines(t *testing.T) {
	got, err := ReadInitialPose(writeFile(t, "h\n1;1;1;0;0;0;1\n2;2;2;0;0;0;1\n"))
	if err != nil {
		t.Fatalf("ReadInitialPose: %v", err)
	}
	if got.Position.X != 1 {
		t.Errorf("expected x=1, got %v", got.Position.X)
	}
}

func TestReadInitialPose_Missing(t *testing.T) {
	_, err := ReadInitialPose(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestReadInitialPose_HeaderOnly(t *testing.T) {
	_, err := ReadInitialPose(writeFile(t, "initPosX\n"))
	if !errors.Is(err, ErrNoInitialPose) {
		t.Errorf("expected ErrNoInitialPose, got %v", err)
	}
}

func TestReadInitialPose_BadNumber(t *testing.T) {
	_, err := ReadInitialPose(writeFile(t, "h\n1;oops\n"))
	var pe *record.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("expected *record.ParseError, got %v", err)
	}
}
