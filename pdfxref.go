// Package pdfxref provides a fluent API for recovering the cross-reference
// table of a PDF file without parsing the rest of the document.
//
// Basic usage:
//
//	table, err := pdfxref.Open("document.pdf").Table()
//	if err != nil {
//	    // handle error
//	}
//	for i, rec := range table.Records {
//	    fmt.Println(table.First+uint64(i), rec.Offset, rec.Generation, rec.Type)
//	}
//
// With options:
//
//	res, err := pdfxref.Open("damaged.pdf").
//	    Limit(256).
//	    Lenient().
//	    Backend(reader.BackendMmap).
//	    Result()
//
// The lower-level core package works on any random-access byte source, and the
// scan package processes whole directory trees.
package pdfxref

import (
	"github.com/tsawler/pdfxref/reader"
)

// Open returns an Extractor for the named file. Nothing is read until a
// terminal operation such as Table() runs; terminal operations close the file.
//
// Example:
//
//	table, err := pdfxref.Open("document.pdf").Table()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates an Extractor from an already-opened reader.Reader.
// The caller is responsible for closing the reader.
//
// Example:
//
//	r, err := reader.Open("document.pdf", reader.BackendFile)
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	table, err := pdfxref.FromReader(r).Table()
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// FromBytes creates an Extractor over a PDF that is already in memory.
func FromBytes(name string, data []byte) *Extractor {
	if data == nil {
		data = []byte{}
	}
	return &Extractor{
		filename: name,
		data:     data,
		options:  defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	table := pdfxref.Must(pdfxref.Open("document.pdf").Table())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
