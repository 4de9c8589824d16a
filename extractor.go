package pdfxref

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/format"
	"github.com/tsawler/pdfxref/reader"
)

// Extractor provides a fluent interface for recovering xref tables.
// Each configuration method returns a new Extractor instance, making it
// safe to branch configurations from a common base.
type Extractor struct {
	// Source
	filename string
	data     []byte // set by FromBytes

	// Reader
	reader *reader.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool // true if reader has been opened

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a copy of options. A
// reader the Extractor opened itself is not shared; the copy opens its own.
func (e *Extractor) clone() *Extractor {
	c := &Extractor{
		filename:     e.filename,
		data:         e.data,
		reader:       e.reader,
		ownsReader:   e.ownsReader,
		readerOpened: e.readerOpened,
		options:      e.options.clone(),
		err:          e.err,
	}
	if c.ownsReader {
		c.reader = nil
		c.ownsReader = false
		c.readerOpened = false
	}
	return c
}

// errNoReader is returned when an Extractor built by FromReader has no reader.
var errNoReader = errors.New("extractor has no reader")

// ensureReader opens the reader if not already open. Files without a .pdf
// extension are accepted when their header says PDF. A reader closed by an
// earlier terminal operation is reopened.
func (e *Extractor) ensureReader() error {
	if e.readerOpened && e.reader != nil {
		return nil
	}
	if e.data != nil {
		e.reader = reader.FromBytes(e.filename, e.data)
		e.ownsReader = true
		e.readerOpened = true
		return nil
	}
	if e.readerOpened {
		return errNoReader
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	r, err := reader.Open(e.filename, e.options.backend)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}

	if format.Detect(e.filename) != format.PDF {
		f, err := format.DetectFromReader(r)
		if err != nil || f != format.PDF {
			r.Close()
			return fmt.Errorf("unsupported file format: %s", e.filename)
		}
	}

	e.reader = r
	e.ownsReader = true
	e.readerOpened = true
	return nil
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsReader && e.reader != nil {
		err := e.reader.Close()
		e.reader = nil
		e.ownsReader = false
		e.readerOpened = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Limit sets how many lines are scanned backward from the end of the file
// looking for %%EOF. Raise it for files with a lot of trailing junk.
//
// Example:
//
//	table, err := pdfxref.Open("doc.pdf").Limit(500).Table()
func (e *Extractor) Limit(lines int) *Extractor {
	newExt := e.clone()
	if lines <= 0 {
		newExt.err = fmt.Errorf("limit must be positive, got %d", lines)
	}
	newExt.options.limit = lines
	return newExt
}

// Lenient accepts an offset line that is not preceded by the startxref
// keyword.
//
// Example:
//
//	table, err := pdfxref.Open("doc.pdf").Lenient().Table()
func (e *Extractor) Lenient() *Extractor {
	newExt := e.clone()
	newExt.options.verifyStartXRef = false
	return newExt
}

// Backend selects how the file is read. It has no effect once the reader is
// open (FromReader, FromBytes).
//
// Example:
//
//	table, err := pdfxref.Open("big.pdf").Backend(reader.BackendMmap).Table()
func (e *Extractor) Backend(b reader.Backend) *Extractor {
	newExt := e.clone()
	newExt.options.backend = b
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Result locates and decodes the xref table and reports where it was found.
// This is a terminal operation that closes the underlying reader if the
// Extractor opened it.
//
// Example:
//
//	res, err := pdfxref.Open("document.pdf").Result()
//	fmt.Println("xref at", res.StartXRef)
func (e *Extractor) Result() (*core.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	defer e.Close()

	if err := e.ensureReader(); err != nil {
		return nil, err
	}

	res, err := e.reader.XRef(e.options.core())
	if err != nil {
		return nil, fmt.Errorf("failed to recover xref of %s: %w", e.name(), err)
	}
	return res, nil
}

// Table locates and decodes the xref table.
// This is a terminal operation that closes the underlying reader if the
// Extractor opened it.
//
// Example:
//
//	table, err := pdfxref.Open("document.pdf").Table()
func (e *Extractor) Table() (*core.XRefTable, error) {
	res, err := e.Result()
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// StartXRef returns the xref offset named by the file trailer without
// decoding the table.
// This is a terminal operation that closes the underlying reader if the
// Extractor opened it.
func (e *Extractor) StartXRef() (uint64, error) {
	if e.err != nil {
		return 0, e.err
	}
	defer e.Close()

	if err := e.ensureReader(); err != nil {
		return 0, err
	}

	s, err := core.NewLineScanner(e.reader, e.reader.Size())
	if err != nil {
		return 0, err
	}
	if err := core.LocateEOF(s, e.options.limit); err != nil {
		return 0, err
	}
	return core.ReadXRefOffset(s, e.options.verifyStartXRef)
}

// Version returns the version from the %PDF-x.y header.
// Note: This does NOT close the reader, allowing further operations.
func (e *Extractor) Version() (reader.PDFVersion, error) {
	if e.err != nil {
		return reader.PDFVersion{}, e.err
	}
	if err := e.ensureReader(); err != nil {
		return reader.PDFVersion{}, err
	}
	return e.reader.Version()
}

func (e *Extractor) name() string {
	if e.filename != "" {
		return e.filename
	}
	if e.reader != nil {
		return e.reader.Name()
	}
	return "<unnamed>"
}
