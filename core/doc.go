// Package core locates and decodes the cross-reference table of a PDF file
// by walking the file backward from its end.
//
// It has no PDF object model. Everything it needs fits in three
// steps over a random-access [Source]:
//
//   - [LocateEOF] walks backward line by line, using a [LineScanner], until it
//     meets the %%EOF marker or gives up after a bounded number of lines.
//   - [ReadXRefOffset] reads the line that precedes the marker and parses the
//     byte offset of the xref table (optionally checking the startxref keyword
//     above it).
//   - [DecodeXRef] seeks to that offset and decodes the "xref" keyword, the
//     subsection header and its fixed-shape records into an [XRefTable].
//
// [FindXRef] chains the three.
//
// # Reverse line scanning
//
// PDF files may carry trailing whitespace, several %%EOF markers left behind
// by incremental updates, and CR, LF and CRLF line endings mixed in a single
// file. The [LineScanner] treats any run of CR/LF bytes as one line boundary
// and tolerates bytes that are not valid UTF-8, replacing them with U+FFFD
// instead of failing.
//
// # Limitations
//
// Only classic xref tables with a single subsection are decoded. Cross-reference
// streams (PDF 1.5+) and trailer dictionaries are out of scope.
//
// # Errors
//
// Every failure is an [*Error] whose Kind is one of the sentinel errors
// ([ErrIO], [ErrMarkerNotFound], [ErrInvalidOffset], [ErrMissingStartXRef],
// [ErrMalformedHeader], [ErrMissingCount], [ErrMalformedRecord]), so callers can
// branch with errors.Is. No partial table is ever returned.
package core
