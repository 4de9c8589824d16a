package core

// DefaultEOFSearchLimit is how many lines LocateEOF walks back by default.
const DefaultEOFSearchLimit = 64

// Options configures FindXRef.
type Options struct {
	// EOFSearchLimit bounds how many lines are scanned backward for %%EOF.
	EOFSearchLimit int

	// VerifyStartXRef requires the startxref keyword above the offset line.
	VerifyStartXRef bool
}

// DefaultOptions returns the options FindXRef uses when none are given.
func DefaultOptions() Options {
	return Options{
		EOFSearchLimit:  DefaultEOFSearchLimit,
		VerifyStartXRef: true,
	}
}

// Result is a located and decoded xref table.
type Result struct {
	StartXRef uint64     `json:"startxref"` // Offset the trailer points at
	Table     *XRefTable `json:"table"`
}

// FindXRef locates the last %%EOF marker of src, reads the xref offset
// before it and decodes the table found there.
func FindXRef(src Source, opts Options) (*Result, error) {
	s, err := NewLineScanner(src, src.Size())
	if err != nil {
		return nil, err
	}

	if err := LocateEOF(s, opts.EOFSearchLimit); err != nil {
		return nil, err
	}

	offset, err := ReadXRefOffset(s, opts.VerifyStartXRef)
	if err != nil {
		return nil, err
	}

	table, err := DecodeXRef(src, offset)
	if err != nil {
		return nil, err
	}

	return &Result{
		StartXRef: offset,
		Table:     table,
	}, nil
}
