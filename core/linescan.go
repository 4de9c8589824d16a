package core

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
)

// scanWindow is how many bytes the LineScanner pulls from its Source per read.
const scanWindow = 512

// LineScanner walks a Source backward one line at a time.
//
// The scanner owns an explicit cursor: every byte before the cursor is still
// to be visited, every byte at or after it has been consumed. Each call to
// PreviousLine returns the line that ends immediately before the cursor and
// moves the cursor to just past the content of the line before that, so
// repeated calls produce the lines of the file in reverse order.
//
// A LineScanner is not safe for concurrent use.
type LineScanner struct {
	src       Source
	pos       int64  // cursor
	lineStart int64  // offset of the first byte of the last line returned
	buf       []byte // window over src[bufStart : bufStart+len(buf)]
	bufStart  int64
	line      []byte // reversed line accumulator
}

// NewLineScanner returns a scanner whose cursor sits at offset. Use
// src.Size() to start from the end of the file.
func NewLineScanner(src Source, offset int64) (*LineScanner, error) {
	if offset < 0 || offset > src.Size() {
		return nil, newError("scan", offset, ErrIO,
			fmt.Errorf("cursor outside source of %d bytes", src.Size()))
	}
	return &LineScanner{
		src:       src,
		pos:       offset,
		lineStart: -1,
	}, nil
}

// Offset returns the cursor position.
func (s *LineScanner) Offset() int64 {
	return s.pos
}

// LineOffset returns the offset of the first byte of the line most recently
// returned by PreviousLine, or -1 before the first call.
func (s *LineScanner) LineOffset() int64 {
	return s.lineStart
}

// Source returns the Source being scanned.
func (s *LineScanner) Source() Source {
	return s.src
}

// PreviousLine returns the line ending immediately before the cursor, with
// line terminators and trailing whitespace removed.
//
// A run of CR and LF bytes counts as a single line boundary, so CRLF and
// blank lines never produce empty results. Reaching the start of the source
// ends the line; once the first line of the file has been returned, further
// calls return io.EOF.
func (s *LineScanner) PreviousLine() (string, error) {
	if s.pos == 0 {
		return "", io.EOF
	}

	// The terminator of the line being read, if the cursor sits after one.
	if err := s.skipEOL(); err != nil {
		return "", err
	}

	s.line = s.line[:0]
	for s.pos > 0 {
		c, err := s.byteBefore()
		if err != nil {
			return "", err
		}
		if isEOL(c) {
			break
		}
		s.line = append(s.line, c)
		s.pos--
	}
	s.lineStart = s.pos

	// The boundary separating this line from the one before it.
	if err := s.skipEOL(); err != nil {
		return "", err
	}

	slices.Reverse(s.line)
	return decodeLine(s.line), nil
}

func (s *LineScanner) skipEOL() error {
	for s.pos > 0 {
		c, err := s.byteBefore()
		if err != nil {
			return err
		}
		if !isEOL(c) {
			return nil
		}
		s.pos--
	}
	return nil
}

// byteBefore returns the byte at pos-1, refilling the window backward when the
// cursor has walked off its start.
func (s *LineScanner) byteBefore() (byte, error) {
	i := s.pos - 1
	if i < s.bufStart || i >= s.bufStart+int64(len(s.buf)) {
		if err := s.fill(i); err != nil {
			return 0, err
		}
	}
	return s.buf[i-s.bufStart], nil
}

// fill loads the window so that it ends at offset i (inclusive).
func (s *LineScanner) fill(i int64) error {
	start := i + 1 - scanWindow
	if start < 0 {
		start = 0
	}
	if s.buf == nil {
		s.buf = make([]byte, 0, scanWindow)
	}
	s.buf = s.buf[:i+1-start]

	n, err := s.src.ReadAt(s.buf, start)
	if n < len(s.buf) {
		s.buf = s.buf[:0]
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return newError("scan", start, ErrIO, err)
	}
	s.bufStart = start
	return nil
}

// decodeLine turns raw line bytes into text. Invalid UTF-8 becomes U+FFFD so a
// stray binary byte never aborts a scan.
func decodeLine(raw []byte) string {
	text, err := xunicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		// Only a transformer failure gets here; invalid bytes are already replaced.
		text = []byte(strings.ToValidUTF8(string(raw), "�"))
	}
	return strings.TrimRightFunc(string(text), unicode.IsSpace)
}

func isEOL(c byte) bool {
	return c == '\n' || c == '\r'
}
