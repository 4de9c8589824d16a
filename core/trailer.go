package core

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	eofMarker        = "%%EOF"
	startXRefKeyword = "startxref"
)

// LocateEOF walks backward from the scanner's cursor until it reads a line
// starting with %%EOF, giving up after limit lines. On success the next call
// to s.PreviousLine returns the line that precedes the marker.
//
// Files saved incrementally carry one marker per update; the last one in the
// file is the one found. Trailing junk after the marker is tolerated as long
// as it fits within limit lines.
func LocateEOF(s *LineScanner, limit int) error {
	for i := 0; i < limit; i++ {
		line, err := s.PreviousLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if strings.HasPrefix(line, eofMarker) {
			return nil
		}
	}
	return newError("locate eof", s.Offset(), ErrMarkerNotFound,
		fmt.Errorf("searched %d lines back", limit))
}

// ReadXRefOffset reads the line before the cursor as the byte offset of the
// xref table. It is meant to be called right after LocateEOF succeeds.
//
// With verifyKeyword set, the line above the offset must be the startxref
// keyword, as the PDF trailer grammar requires:
//
//	startxref
//	1234
//	%%EOF
func ReadXRefOffset(s *LineScanner, verifyKeyword bool) (uint64, error) {
	line, err := s.PreviousLine()
	if err == io.EOF {
		return 0, newError("read offset", 0, ErrInvalidOffset, io.ErrUnexpectedEOF)
	}
	if err != nil {
		return 0, err
	}

	at := s.LineOffset()
	offset, err := strconv.ParseUint(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, newError("read offset", at, ErrInvalidOffset, err)
	}
	if size := s.Source().Size(); offset >= uint64(size) {
		return 0, newError("read offset", at, ErrInvalidOffset,
			fmt.Errorf("offset %d beyond end of file (%d bytes)", offset, size))
	}

	if verifyKeyword {
		kw, err := s.PreviousLine()
		if err != nil && err != io.EOF {
			return 0, err
		}
		if strings.TrimSpace(kw) != startXRefKeyword {
			return 0, newError("read offset", s.LineOffset(), ErrMissingStartXRef,
				fmt.Errorf("got %q", kw))
		}
	}

	return offset, nil
}
