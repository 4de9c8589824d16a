package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/pdfxref/core"
)

// Backend selects how a Reader accesses file bytes.
type Backend int

const (
	// BackendFile reads through the open file handle with ReadAt.
	BackendFile Backend = iota
	// BackendMmap maps the file read-only; falls back to BackendFile when
	// mapping is unavailable.
	BackendMmap
	// BackendMemory reads the whole file into memory up front.
	BackendMemory
)

// String returns the backend name as accepted by ParseBackend.
func (b Backend) String() string {
	switch b {
	case BackendFile:
		return "file"
	case BackendMmap:
		return "mmap"
	case BackendMemory:
		return "memory"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend converts "file", "mmap" or "memory" to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "":
		return BackendFile, nil
	case "mmap":
		return BackendMmap, nil
	case "memory", "mem":
		return BackendMemory, nil
	default:
		return BackendFile, fmt.Errorf("unknown backend %q", s)
	}
}

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader is an open PDF file exposed as a core.Source.
type Reader struct {
	name    string
	file    *os.File      // nil once the bytes live in data
	data    []byte        // mapped or loaded file contents
	mem     *bytes.Reader // over data
	mapped  bool
	backend Backend
	size    int64
}

// Ensure Reader can be handed to the core decoder directly
var _ core.Source = (*Reader)(nil)

// Open opens a PDF file with the given backend.
func Open(filename string, backend Backend) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader, err := NewReader(file, backend)
	if err != nil {
		file.Close()
		return nil, err
	}

	return reader, nil
}

// NewReader wraps an open file. The Reader takes ownership of file and closes
// it on Close (or earlier, once its contents are mapped or loaded).
func NewReader(file *os.File, backend Backend) (*Reader, error) {
	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	r := &Reader{
		name:    file.Name(),
		file:    file,
		backend: BackendFile,
		size:    fileInfo.Size(),
	}

	switch backend {
	case BackendMmap:
		data, err := mmapFile(file, r.size)
		if err != nil {
			// Keep reading through the handle.
			break
		}
		r.setData(data, true)
		r.backend = BackendMmap
	case BackendMemory:
		data := make([]byte, r.size)
		if _, err := file.ReadAt(data, 0); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		r.setData(data, false)
		r.backend = BackendMemory
	}

	return r, nil
}

// FromBytes wraps an in-memory PDF. name is only used for reporting.
func FromBytes(name string, data []byte) *Reader {
	r := &Reader{
		name:    name,
		backend: BackendMemory,
		size:    int64(len(data)),
	}
	r.setData(data, false)
	return r
}

// setData switches the reader to serve from data and releases the file
// handle, which a mapping does not need.
func (r *Reader) setData(data []byte, mapped bool) {
	r.data = data
	r.mem = bytes.NewReader(data)
	r.mapped = mapped
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
}

// ReadAt implements io.ReaderAt.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if r.mem != nil {
		return r.mem.ReadAt(p, off)
	}
	if r.file == nil {
		return 0, os.ErrClosed
	}
	return r.file.ReadAt(p, off)
}

// Size returns the file size in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// Name returns the file name the reader was opened with.
func (r *Reader) Name() string {
	return r.name
}

// Backend returns the backend actually in use, which differs from the one
// requested when mapping failed.
func (r *Reader) Backend() Backend {
	return r.backend
}

// versionPattern matches the x.y after %PDF-
var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)`)

// Version parses the PDF header (%PDF-x.y). A bad header does not stop xref
// recovery; it only means the version is unknown.
func (r *Reader) Version() (PDFVersion, error) {
	header := make([]byte, 16)
	n, err := r.ReadAt(header, 0)
	if err != nil && err != io.EOF {
		return PDFVersion{}, fmt.Errorf("failed to read header: %w", err)
	}
	headerStr := string(header[:n])

	if !strings.HasPrefix(headerStr, "%PDF-") {
		return PDFVersion{}, fmt.Errorf("invalid PDF header: %q", headerStr)
	}

	matches := versionPattern.FindStringSubmatch(headerStr[5:])
	if len(matches) < 3 {
		return PDFVersion{}, fmt.Errorf("invalid version format: %q", headerStr[5:])
	}

	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	return PDFVersion{Major: major, Minor: minor}, nil
}

// XRef locates and decodes the file's cross-reference table.
func (r *Reader) XRef(opts core.Options) (*core.Result, error) {
	return core.FindXRef(r, opts)
}

// Close releases the mapping or file handle.
func (r *Reader) Close() error {
	var err error
	if r.mapped && r.data != nil {
		err = munmap(r.data)
	}
	r.data = nil
	r.mem = nil
	r.mapped = false

	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
		r.file = nil
	}
	return err
}
