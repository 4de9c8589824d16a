package pdfxref

import (
	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/reader"
)

// ExtractOptions holds configuration for xref recovery.
type ExtractOptions struct {
	// Lines scanned backward for %%EOF
	limit int

	// Require the startxref keyword above the offset line
	verifyStartXRef bool

	// How the file is opened
	backend reader.Backend
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		limit:           core.DefaultEOFSearchLimit,
		verifyStartXRef: true,
		backend:         reader.BackendFile,
	}
}

// clone creates a copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	return ExtractOptions{
		limit:           o.limit,
		verifyStartXRef: o.verifyStartXRef,
		backend:         o.backend,
	}
}

// core converts the options to the decoder's form.
func (o ExtractOptions) core() core.Options {
	return core.Options{
		EOFSearchLimit:  o.limit,
		VerifyStartXRef: o.verifyStartXRef,
	}
}
