package core

import (
	"errors"
	"fmt"
)

// Error kinds. KindOf yields exactly one of these for every error returned by
// this package; errors.Is may also match the underlying cause.
var (
	// ErrIO indicates the underlying read failed or ran outside the source.
	ErrIO = errors.New("i/o failure")

	// ErrMarkerNotFound indicates no %%EOF line was seen within the search limit
	ErrMarkerNotFound = errors.New("%%EOF marker not found")

	// ErrInvalidOffset indicates the line before %%EOF is not a usable byte offset
	ErrInvalidOffset = errors.New("invalid xref offset")

	// ErrMissingStartXRef indicates the offset line is not preceded by startxref
	ErrMissingStartXRef = errors.New("startxref keyword not found")

	// ErrMalformedHeader indicates the xref keyword or subsection header is wrong
	ErrMalformedHeader = errors.New("malformed xref header")

	// ErrMissingCount indicates the subsection header has no usable record count
	ErrMissingCount = errors.New("missing xref subsection count")

	// ErrMalformedRecord indicates a record line does not match "offset generation f|n"
	ErrMalformedRecord = errors.New("malformed xref record")
)

// ErrInvalidObjType is returned by ParseObjType for tokens other than "f" and "n".
var ErrInvalidObjType = errors.New("invalid object type")

// Error describes a failure while locating or decoding an xref table.
type Error struct {
	Op     string // Operation that failed (e.g. "scan", "locate eof", "decode")
	Offset int64  // Byte offset the operation was looking at, -1 if unknown
	Kind   error  // One of the Err* kinds above
	Err    error  // Underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := "pdfxref: " + e.Op
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the kind of a failure produced by this package, or nil if err
// did not come from here.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

func newError(op string, offset int64, kind, err error) error {
	return &Error{Op: op, Offset: offset, Kind: kind, Err: err}
}
