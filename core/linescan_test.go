package core

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// failingSource returns err for every read.
type failingSource struct {
	size int64
	err  error
}

func (f failingSource) ReadAt(p []byte, off int64) (int, error) { return 0, f.err }
func (f failingSource) Size() int64                             { return f.size }

// collectLines drains a scanner started at the end of input.
func collectLines(t *testing.T, input string) []string {
	t.Helper()
	src := strings.NewReader(input)
	s, err := NewLineScanner(src, src.Size())
	if err != nil {
		t.Fatalf("NewLineScanner: %v", err)
	}

	var lines []string
	for {
		line, err := s.PreviousLine()
		if err == io.EOF {
			return lines
		}
		if err != nil {
			t.Fatalf("PreviousLine: %v", err)
		}
		lines = append(lines, line)
	}
}

// TestPreviousLine tests walking mixed line endings backward
func TestPreviousLine(t *testing.T) {
	src := strings.NewReader("fuga\r\nfoo\nhoge")
	s, err := NewLineScanner(src, src.Size())
	if err != nil {
		t.Fatalf("NewLineScanner: %v", err)
	}

	for _, want := range []string{"hoge", "foo", "fuga"} {
		got, err := s.PreviousLine()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}

	if _, err := s.PreviousLine(); err != io.EOF {
		t.Errorf("expected io.EOF after the first line, got %v", err)
	}
	if s.Offset() != 0 {
		t.Errorf("expected cursor at 0, got %d", s.Offset())
	}
}

// TestPreviousLineReverseOrder tests that scanning reproduces the lines in reverse
func TestPreviousLineReverseOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single line", "hello", []string{"hello"}},
		{"trailing LF", "a\nb\n", []string{"b", "a"}},
		{"trailing CRLF", "%%EOF\r\n", []string{"%%EOF"}},
		{"CR only", "one\rtwo\rthree", []string{"three", "two", "one"}},
		{"mixed", "a\r\nb\rc\nd", []string{"d", "c", "b", "a"}},
		{"blank lines collapse", "a\n\n\r\n\nb", []string{"b", "a"}},
		{"leading terminators", "\n\nx", []string{"x"}},
		{"only terminators", "\r\n\r\n", []string{""}},
		{"trailing whitespace trimmed", "abc \t\nxyz  \n", []string{"xyz", "abc"}},
		{"leading whitespace kept", "  indented\n", []string{"  indented"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectLines(t, tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d lines %q, got %d lines %q", len(tt.want), tt.want, len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

// TestPreviousLineInvalidUTF8 tests that bad bytes are replaced, not fatal
func TestPreviousLineInvalidUTF8(t *testing.T) {
	got := collectLines(t, "ok\n\xffab\n%\xe2\x28EOF")
	want := []string{"%�(EOF", "�ab", "ok"}

	if len(got) != len(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

// TestPreviousLineAcrossWindows tests lines longer than the read window
func TestPreviousLineAcrossWindows(t *testing.T) {
	long := strings.Repeat("0123456789", 3*scanWindow/10+7)
	input := "first\n" + long + "\r\nlast"

	got := collectLines(t, input)
	if len(got) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(got))
	}
	if got[0] != "last" {
		t.Errorf("expected %q, got %q", "last", got[0])
	}
	if got[1] != long {
		t.Errorf("long line mismatch: got %d bytes, want %d", len(got[1]), len(long))
	}
	if got[2] != "first" {
		t.Errorf("expected %q, got %q", "first", got[2])
	}
}

// TestPreviousLineFromMiddle tests a cursor that does not start at the end
func TestPreviousLineFromMiddle(t *testing.T) {
	input := "fuga\r\nfoo\nhoge"
	src := strings.NewReader(input)

	// Cursor right before the LF that ends "foo".
	s, err := NewLineScanner(src, int64(strings.Index(input, "\nhoge")))
	if err != nil {
		t.Fatalf("NewLineScanner: %v", err)
	}

	got, err := s.PreviousLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "foo" {
		t.Errorf("expected %q, got %q", "foo", got)
	}
	if s.LineOffset() != 6 {
		t.Errorf("expected line offset 6, got %d", s.LineOffset())
	}
	// Cursor sits just past "fuga".
	if s.Offset() != 4 {
		t.Errorf("expected cursor 4, got %d", s.Offset())
	}
}

// TestNewLineScannerBounds tests rejecting cursors outside the source
func TestNewLineScannerBounds(t *testing.T) {
	src := strings.NewReader("abc")

	for _, offset := range []int64{-1, 4} {
		_, err := NewLineScanner(src, offset)
		if !errors.Is(err, ErrIO) {
			t.Errorf("offset %d: expected ErrIO, got %v", offset, err)
		}
	}

	for _, offset := range []int64{0, 3} {
		if _, err := NewLineScanner(src, offset); err != nil {
			t.Errorf("offset %d: unexpected error: %v", offset, err)
		}
	}
}

// TestPreviousLineReadError tests that read failures surface as ErrIO
func TestPreviousLineReadError(t *testing.T) {
	boom := errors.New("device error")
	s, err := NewLineScanner(failingSource{size: 10, err: boom}, 10)
	if err != nil {
		t.Fatalf("NewLineScanner: %v", err)
	}

	_, err = s.PreviousLine()
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected underlying error to be preserved, got %v", err)
	}
}

// TestPreviousLineShortSource tests a source that reports more bytes than it has
func TestPreviousLineShortSource(t *testing.T) {
	s, err := NewLineScanner(failingSource{size: 5, err: io.EOF}, 5)
	if err != nil {
		t.Fatalf("NewLineScanner: %v", err)
	}

	_, err = s.PreviousLine()
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}
