package replay

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/record"
)

// helper: write content to a temp pose file.
func poseFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poses.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

// helper: compare a sample against expected column values.
func assertSample(t *testing.T, got pose.Sample, want [pose.FieldCount]float64) {
	t.Helper()
	if got.Fields() != want {
		t.Errorf("expected %v, got %v", want, got.Fields())
	}
}

var neutralFields = pose.Neutral().Fields()

// 1. Two data lines, k=1: two complete frames, then exhaustion and reset.
func TestReadFrame_Scenario(t *testing.T) {
	path := poseFile(t, "1;2;3;0;0;0;1\n4;5;6;0;0;0;1\n")
	fr := NewFrameReader(nil)

	frame, complete, err := fr.ReadFrame(0, 1, path)
	if err != nil {
		t.Fatalf("ReadFrame(0): %v", err)
	}
	if !complete {
		t.Error("expected frame 0 complete")
	}
	assertSample(t, frame[0], [pose.FieldCount]float64{1, 2, 3, 0, 0, 0, 1})

	frame, complete, err = fr.ReadFrame(1, 1, path)
	if err != nil {
		t.Fatalf("ReadFrame(1): %v", err)
	}
	if !complete {
		t.Error("expected frame 1 complete")
	}
	assertSample(t, frame[0], [pose.FieldCount]float64{4, 5, 6, 0, 0, 0, 1})
	if !fr.IsOpen() {
		t.Error("expected stream still open after last terminated line")
	}

	frame, complete, err = fr.ReadFrame(2, 1, path)
	if err != nil {
		t.Fatalf("ReadFrame(2): %v", err)
	}
	if complete {
		t.Error("expected frame 2 incomplete")
	}
	assertSample(t, frame[0], neutralFields)
	if fr.IsOpen() {
		t.Error("expected stream closed after exhaustion")
	}
	if fr.Cursor() != 0 {
		t.Errorf("expected cursor reset to 0, got %d", fr.Cursor())
	}
}

// 2. k=3 over two lines: real data for points 0-1, neutral for point 2.
func TestReadFrame_PartialFrame(t *testing.T) {
	path := poseFile(t, "1;1;1;0;0;0;1\n2;2;2;0;0;0;1\n")
	fr := NewFrameReader(nil)

	frame, complete, err := fr.ReadFrame(0, 3, path)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if complete {
		t.Error("expected incomplete frame")
	}
	if len(frame) != 3 {
		t.Fatalf("expected 3 points, got %d", len(frame))
	}
	assertSample(t, frame[0], [pose.FieldCount]float64{1, 1, 1, 0, 0, 0, 1})
	assertSample(t, frame[1], [pose.FieldCount]float64{2, 2, 2, 0, 0, 0, 1})
	assertSample(t, frame[2], neutralFields)
	if fr.IsOpen() || fr.Cursor() != 0 {
		t.Errorf("expected closed reader with cursor 0, open=%v cursor=%d", fr.IsOpen(), fr.Cursor())
	}
}

// 3. Cursor climbs 1..M, resets on call M+1, and index 0 replays the first record.
func TestReadFrame_CursorMonotonicAndReplay(t *testing.T) {
	path := poseFile(t, "1;0;0\n2;0;0\n3;0;0\n4;0;0\n")
	const m = 4
	fr := NewFrameReader(nil)

	for i := 0; i < m; i++ {
		frame, complete, err := fr.ReadFrame(i, 1, path)
		if err != nil {
			t.Fatalf("ReadFrame(%d): %v", i, err)
		}
		if !complete {
			t.Fatalf("frame %d: expected complete", i)
		}
		if frame[0].Position.X != float64(i+1) {
			t.Errorf("frame %d: expected x=%d, got %v", i, i+1, frame[0].Position.X)
		}
		if fr.Cursor() != i+1 {
			t.Errorf("frame %d: expected cursor %d, got %d", i, i+1, fr.Cursor())
		}
	}

	_, complete, err := fr.ReadFrame(m, 1, path)
	if err != nil {
		t.Fatalf("ReadFrame(%d): %v", m, err)
	}
	if complete || fr.IsOpen() || fr.Cursor() != 0 {
		t.Fatalf("expected exhaustion: complete=%v open=%v cursor=%d", complete, fr.IsOpen(), fr.Cursor())
	}

	frame, complete, err := fr.ReadFrame(0, 1, path)
	if err != nil {
		t.Fatalf("ReadFrame(0) after reset: %v", err)
	}
	if !complete || frame[0].Position.X != 1 {
		t.Errorf("expected first record replayed, got complete=%v x=%v", complete, frame[0].Position.X)
	}
}

// 4. A leading header is consumed without advancing the cursor.
func TestReadFrame_SkipsHeader(t *testing.T) {
	path := poseFile(t, "rawPosX;rawPosY;rawPosZ;rawRotX;rawRotY;rawRotZ;rawRotW\n7;8;9;0;0;0;1\n")
	fr := NewFrameReader(nil)

	frame, complete, err := fr.ReadFrame(0, 1, path)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !complete {
		t.Error("expected complete frame")
	}
	assertSample(t, frame[0], [pose.FieldCount]float64{7, 8, 9, 0, 0, 0, 1})
	if fr.Cursor() != 1 {
		t.Errorf("expected cursor 1, got %d", fr.Cursor())
	}
}

// 5. A jump ahead skips lines; a lower index later never moves backward.
func TestReadFrame_CatchUpSkipsForwardOnly(t *testing.T) {
	path := poseFile(t, "0\n1\n2\n3\n4\n5\n")
	fr := NewFrameReader(nil)

	frame, _, err := fr.ReadFrame(2, 2, path)
	if err != nil {
		t.Fatalf("ReadFrame(2): %v", err)
	}
	if frame[0].Position.X != 2 || frame[1].Position.X != 3 {
		t.Errorf("expected lines 2,3, got %v,%v", frame[0].Position.X, frame[1].Position.X)
	}
	if fr.Cursor() != 4 {
		t.Errorf("expected cursor 4, got %d", fr.Cursor())
	}

	frame, _, err = fr.ReadFrame(1, 1, path)
	if err != nil {
		t.Fatalf("ReadFrame(1): %v", err)
	}
	if frame[0].Position.X != 4 {
		t.Errorf("expected next line 4 (no backward seek), got %v", frame[0].Position.X)
	}
}

// 6. Empty file: first frame is immediately incomplete.
func TestReadFrame_EmptyFile(t *testing.T) {
	path := poseFile(t, "")
	fr := NewFrameReader(nil)

	frame, complete, err := fr.ReadFrame(0, 2, path)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if complete {
		t.Error("expected incomplete frame")
	}
	for _, s := range frame {
		assertSample(t, s, neutralFields)
	}
}

// 7. k=0 is trivially complete and does not fault.
func TestReadFrame_ZeroPoints(t *testing.T) {
	path := poseFile(t, "1;2;3\n")
	fr := NewFrameReader(nil)

	frame, complete, err := fr.ReadFrame(0, 0, path)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !complete {
		t.Error("expected k=0 frame to be complete")
	}
	if len(frame) != 0 {
		t.Errorf("expected empty frame, got %d points", len(frame))
	}
}

// 8. Non-numeric token surfaces as a ParseError.
func TestReadFrame_ParseError(t *testing.T) {
	path := poseFile(t, "1;x;3\n")
	fr := NewFrameReader(nil)

	_, _, err := fr.ReadFrame(0, 1, path)
	var pe *record.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Column != 1 {
		t.Errorf("expected column 1, got %d", pe.Column)
	}
}

// 9. Missing file is an open failure and leaves the reader closed.
func TestReadFrame_MissingFile(t *testing.T) {
	fr := NewFrameReader(nil)
	_, _, err := fr.ReadFrame(0, 1, filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if fr.IsOpen() {
		t.Error("expected reader to stay closed")
	}
}

// 10. Unterminated last line completes the frame and closes the stream in the same call.
func TestReadFrame_UnterminatedLastLine(t *testing.T) {
	path := poseFile(t, "1;2;3")
	fr := NewFrameReader(nil)

	frame, complete, err := fr.ReadFrame(0, 1, path)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !complete || frame[0].Position.Z != 3 {
		t.Errorf("expected complete frame with z=3, got complete=%v z=%v", complete, frame[0].Position.Z)
	}
	if fr.IsOpen() || fr.Cursor() != 0 {
		t.Errorf("expected closed reader with cursor 0")
	}
}

// 11. Negative point count is rejected.
func TestReadFrame_NegativePoints(t *testing.T) {
	fr := NewFrameReader(nil)
	if _, _, err := fr.ReadFrame(0, -1, "unused"); err == nil {
		t.Fatal("expected error for negative k")
	}
}

// 12. A read fault is reported instead of being treated as end of file.
func TestReadFrame_ReadFaultReported(t *testing.T) {
	dir := t.TempDir() // opens fine, reads fail with EISDIR
	fr := NewFrameReader(nil)

	frame, complete, err := fr.ReadFrame(0, 1, dir)
	if err == nil {
		t.Fatal("expected read error for a directory")
	}
	if complete {
		t.Error("expected incomplete frame")
	}
	assertSample(t, frame[0], neutralFields)
	if fr.IsOpen() || fr.Cursor() != 0 {
		t.Errorf("expected closed reader with cursor 0")
	}
}
