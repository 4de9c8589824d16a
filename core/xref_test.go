package core

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

// TestParseObjType tests decoding the record type token
func TestParseObjType(t *testing.T) {
	tests := []struct {
		tok     string
		want    ObjType
		wantErr bool
	}{
		{"f", Free, false},
		{"n", InUse, false},
		{"F", 0, true},
		{"N", 0, true},
		{"", 0, true},
		{"nn", 0, true},
		{"x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			got, err := ParseObjType(tt.tok)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidObjType) {
					t.Fatalf("expected ErrInvalidObjType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestObjTypeText tests the text form used by JSON output
func TestObjTypeText(t *testing.T) {
	b, err := InUse.MarshalText()
	if err != nil || string(b) != "n" {
		t.Errorf("expected \"n\", got %q (%v)", b, err)
	}
	b, err = Free.MarshalText()
	if err != nil || string(b) != "f" {
		t.Errorf("expected \"f\", got %q (%v)", b, err)
	}
	if _, err := ObjType('x').MarshalText(); err == nil {
		t.Error("expected error for invalid type")
	}

	var typ ObjType
	if err := typ.UnmarshalText([]byte("f")); err != nil || typ != Free {
		t.Errorf("expected Free, got %v (%v)", typ, err)
	}

	if InUse.String() != "in use" || Free.String() != "free" {
		t.Errorf("unexpected String(): %q, %q", InUse.String(), Free.String())
	}
}

// TestDecodeXRef tests decoding a complete single-subsection table
func TestDecodeXRef(t *testing.T) {
	input := "xref\n0 3\n0000000000 65535 f\n0000000017 00000 n\n0000000100 00000 n\n"

	table, err := DecodeXRef(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []XRefRecord{
		{0, 65535, Free},
		{17, 0, InUse},
		{100, 0, InUse},
	}
	if table.Len() != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), table.Len())
	}
	for i, w := range want {
		if table.Records[i] != w {
			t.Errorf("record %d: expected %+v, got %+v", i, w, table.Records[i])
		}
	}

	inUse, free := table.Counts()
	if inUse != 2 || free != 1 {
		t.Errorf("expected 2 in use and 1 free, got %d and %d", inUse, free)
	}
}

// TestDecodeXRefLineEndings tests the EOL variants allowed for 20-byte records
func TestDecodeXRefLineEndings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"space LF", "xref\n0 2\n0000000000 65535 f \n0000000017 00000 n \n"},
		{"space CR", "xref\r0 2\r0000000000 65535 f \r0000000017 00000 n \r"},
		{"CRLF", "xref\r\n0 2\r\n0000000000 65535 f\r\n0000000017 00000 n\r\n"},
		{"no final newline", "xref\n0 2\n0000000000 65535 f\n0000000017 00000 n"},
		{"keyword trailing blanks", "xref  \n0 2\n0000000000 65535 f\n0000000017 00000 n\n"},
		{"leading whitespace", "\r\n  xref\n0 2\n0000000000 65535 f\n0000000017 00000 n\n"},
		{"trailer follows", "xref\n0 2\n0000000000 65535 f \n0000000017 00000 n \ntrailer\n<< /Size 2 >>\n"},
	}

	want := []XRefRecord{{0, 65535, Free}, {17, 0, InUse}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := DecodeXRef(strings.NewReader(tt.input), 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(table.Records, want) {
				t.Errorf("expected %+v, got %+v", want, table.Records)
			}
		})
	}
}

// TestDecodeXRefAtOffset tests decoding a table that does not start the file
func TestDecodeXRefAtOffset(t *testing.T) {
	prefix := "%PDF-1.4\n1 0 obj\n<< >>\nendobj\n"
	input := prefix + "xref\n5 2\n0000000009 00002 n\n0000000000 00001 f\n"

	table, err := DecodeXRef(strings.NewReader(input), uint64(len(prefix)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.First != 5 {
		t.Errorf("expected first object 5, got %d", table.First)
	}

	rec, ok := table.Lookup(5)
	if !ok || rec != (XRefRecord{9, 2, InUse}) {
		t.Errorf("object 5: got %+v, %v", rec, ok)
	}
	rec, ok = table.Lookup(6)
	if !ok || rec.InUse() {
		t.Errorf("object 6: expected a free record, got %+v, %v", rec, ok)
	}
	for _, objNum := range []uint64{0, 4, 7} {
		if _, ok := table.Lookup(objNum); ok {
			t.Errorf("did not expect object %d to exist", objNum)
		}
	}
}

// TestDecodeXRefEmptySubsection tests a header declaring zero records
func TestDecodeXRefEmptySubsection(t *testing.T) {
	table, err := DecodeXRef(strings.NewReader("xref\n0 0\ntrailer\n"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("expected empty table, got %d records", table.Len())
	}
}

// TestDecodeXRefErrors tests that malformed tables fail as a whole
func TestDecodeXRefErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		offset  uint64
		wantErr error
	}{
		{"not xref", "trailer\n<< >>\n", 0, ErrMalformedHeader},
		{"truncated keyword", "xre", 0, ErrMalformedHeader},
		{"offset beyond end", "xref\n0 0\n", 100, ErrMalformedHeader},
		{"offset misses keyword", "xref\n0 0\n", 1, ErrMalformedHeader},
		{"keyword runs into header", "xref0 1\n0000000000 65535 f\n", 0, ErrMalformedHeader},
		{"keyword runs into junk", "xrefjunk\n0 1\n0000000000 65535 f\n", 0, ErrMalformedHeader},
		{"xref stream", "12 0 obj\n<< /Type /XRef >>\n", 0, ErrMalformedHeader},
		{"no subsection header", "xref\n", 0, ErrMissingCount},
		{"header without count", "xref\n0\n", 0, ErrMissingCount},
		{"count not a number", "xref\n0 abc\n", 0, ErrMissingCount},
		{"negative count", "xref\n0 -1\n", 0, ErrMissingCount},
		{"too many header tokens", "xref\n0 1 2\n0000000000 65535 f\n", 0, ErrMalformedHeader},
		{"start not a number", "xref\nx 1\n0000000000 65535 f\n", 0, ErrMalformedHeader},
		{"two fields", "xref\n0 1\n0000000000 65535\n", 0, ErrMalformedRecord},
		{"four fields", "xref\n0 1\n0000000000 65535 f x\n", 0, ErrMalformedRecord},
		{"bad offset", "xref\n0 1\n00000000zz 65535 f\n", 0, ErrMalformedRecord},
		{"bad generation", "xref\n0 1\n0000000000 -1 f\n", 0, ErrMalformedRecord},
		{"blank line between records", "xref\n0 2\n0000000000 65535 f\n\n0000000017 00000 n\n", 0, ErrMalformedRecord},
		{"trailer instead of record", "xref\n0 2\n0000000000 65535 f\ntrailer\n", 0, ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := DecodeXRef(strings.NewReader(tt.input), tt.offset)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if table != nil {
				t.Errorf("expected no table, got %d records", table.Len())
			}
		})
	}
}

// TestDecodeXRefInvalidType tests the type token error reaching the caller
func TestDecodeXRefInvalidType(t *testing.T) {
	_, err := DecodeXRef(strings.NewReader("xref\n0 1\n0000000000 65535 x\n"), 0)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if !errors.Is(err, ErrInvalidObjType) {
		t.Errorf("expected ErrInvalidObjType in chain, got %v", err)
	}
	if KindOf(err) != ErrMalformedRecord {
		t.Errorf("expected kind ErrMalformedRecord, got %v", KindOf(err))
	}
}

// TestDecodeXRefTruncated tests a count larger than the records present
func TestDecodeXRefTruncated(t *testing.T) {
	input := "xref\n0 5\n0000000000 65535 f\n0000000017 00000 n\n0000000100 00000 n\n"

	table, err := DecodeXRef(strings.NewReader(input), 0)
	if table != nil {
		t.Fatalf("expected no table, got %d records", table.Len())
	}
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF in chain, got %v", err)
	}

	var xerr *Error
	if !errors.As(err, &xerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if xerr.Offset != int64(len(input)) {
		t.Errorf("expected failure at offset %d, got %d", len(input), xerr.Offset)
	}
}

// TestDecodeXRefHugeCount tests that a lying count does not drive allocation
func TestDecodeXRefHugeCount(t *testing.T) {
	_, err := DecodeXRef(strings.NewReader("xref\n0 18446744073709551615\n0 0 n\n"), 0)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
}

// TestDecodeXRefIdempotent tests that decoding the same bytes twice is stable
func TestDecodeXRefIdempotent(t *testing.T) {
	input := "xref\n0 3\n0000000000 65535 f\n0000000017 00000 n\n0000000100 00000 n\n"
	src := strings.NewReader(input)

	first, err := DecodeXRef(src, 0)
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	second, err := DecodeXRef(src, 0)
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("decodes differ: %+v vs %+v", first, second)
	}
}

// TestDecodeXRefReadError tests that device errors are not reported as grammar errors
func TestDecodeXRefReadError(t *testing.T) {
	boom := errors.New("bad sector")
	_, err := DecodeXRef(failingSource{size: 64, err: boom}, 0)
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected underlying error, got %v", err)
	}
}
