package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/telemetry"
)

// #region parse-error
// ParseError reports a token that is not a number.
type ParseError struct {
	Line   string
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse column %d of %q: %v", e.Column, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// #endregion parse-error

// #region reader
// Reader is a forward-only line source over a record file.
type Reader struct {
	file *os.File
	buf  *bufio.Reader
	eof  bool
	err  error

	peeked   bool
	peekLine string
	peekOK   bool
}

// OpenReader opens path for reading.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stream %s: %w", path, err)
	}
	return &Reader{file: f, buf: bufio.NewReader(f)}, nil
}

// ReadLine returns the next line without its terminator. ok is false when
// nothing could be read. A final unterminated line is returned with ok=true
// and EOF already set.
func (r *Reader) ReadLine() (line string, ok bool) {
	if r.peeked {
		r.peeked = false
		return r.peekLine, r.peekOK
	}
	return r.next()
}

// PeekLine returns the next line without consuming it.
func (r *Reader) PeekLine() (line string, ok bool) {
	if !r.peeked {
		r.peekLine, r.peekOK = r.next()
		r.peeked = true
	}
	return r.peekLine, r.peekOK
}

func (r *Reader) next() (string, bool) {
	if r.eof {
		return "", false
	}
	s, err := r.buf.ReadString('\n')
	if err != nil {
		// Any read failure ends the stream. Err tells a fault from end of file.
		r.eof = true
		if !errors.Is(err, io.EOF) {
			r.err = err
			return "", false
		}
		if s == "" {
			return "", false
		}
	}
	return strings.TrimRight(s, "\r\n"), true
}

// EOF reports whether the stream has ended, at end of file or on a read fault.
func (r *Reader) EOF() bool { return r.eof }

// Err returns the read fault that ended the stream, or nil at a clean end of file.
func (r *Reader) Err() error { return r.err }

// Close releases the file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// #endregion reader

// #region parse
// Tokens splits a line on the delimiter. An empty line has no tokens and a
// trailing delimiter does not produce an empty last token.
func Tokens(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}
	toks := strings.Split(line, Delimiter)
	if toks[len(toks)-1] == "" {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// ParseLine assigns the first seven tokens of line to s in column order.
// Missing columns keep whatever s already held; extra columns are ignored.
func ParseLine(line string, s *pose.Sample) error {
	for i, tok := range Tokens(line) {
		if i >= pose.FieldCount {
			break
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			telemetry.ParseErrors.Inc()
			return &ParseError{Line: line, Column: i, Err: err}
		}
		s.Set(i, v)
	}
	return nil
}

// IsHeader reports whether line looks like a column header rather than data.
func IsHeader(line string) bool {
	toks := Tokens(line)
	if len(toks) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(toks[0]), 64)
	return err != nil
}

// #endregion parse
