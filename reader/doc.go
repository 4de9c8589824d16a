// Package reader opens PDF files as random-access byte sources for the core
// xref decoder.
//
// # Opening PDF Files
//
// Use [Open] to open a PDF file for reading:
//
//	r, err := reader.Open("document.pdf", reader.BackendMmap)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	res, err := r.XRef(core.DefaultOptions())
//
// Or use [NewReader] with an existing *os.File, or [FromBytes] for data that
// is already in memory.
//
// # Backends
//
//   - [BackendFile] - ReadAt on the file handle; nothing is loaded up front
//   - [BackendMmap] - read-only memory map; falls back to BackendFile when the
//     platform or the file (e.g. an empty one) cannot be mapped
//   - [BackendMemory] - the whole file is read into memory
//
// A [Reader] satisfies core.Source, so all three are interchangeable as far as
// the decoder is concerned. [Reader.Backend] reports which one is in effect.
package reader
