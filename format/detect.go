// Package format decides whether a file is a PDF worth handing to the xref
// decoder.
package format

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a detected file format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), PDF.Extension()) {
		return PDF
	}
	return Unknown
}

// headerWindow is how far into the file the %PDF- header may appear. Readers
// are expected to tolerate junk before it within the first 1024 bytes.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// DetectFromMagic checks the leading bytes of a file for the PDF header.
func DetectFromMagic(data []byte) Format {
	if len(data) > headerWindow {
		data = data[:headerWindow]
	}
	if bytes.Contains(data, pdfMagic) {
		return PDF
	}
	return Unknown
}

// DetectFromReader reads the first bytes of r and checks them for the PDF
// header.
func DetectFromReader(r io.ReaderAt) (Format, error) {
	magic := make([]byte, headerWindow)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	return DetectFromMagic(magic[:n]), nil
}
