package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/format"
	"github.com/tsawler/pdfxref/internal/logger"
	"github.com/tsawler/pdfxref/reader"
)

// ErrNotPDF is reported for files without a %PDF- header when header
// sniffing is enabled.
var ErrNotPDF = errors.New("not a PDF file")

// Options configures a batch scan.
type Options struct {
	// Number of concurrent workers (0 = NumCPU, capped at 8)
	Workers int

	// Backend used to open each file
	Backend reader.Backend

	// XRef is passed to the decoder for every file
	XRef core.Options

	// SniffHeader skips files that lack a %PDF- header in their first 1024 bytes
	SniffHeader bool

	// Logger receives progress; nil discards it
	Logger logger.Logger
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		Backend: reader.BackendMmap,
		XRef:    core.DefaultOptions(),
	}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return min(runtime.NumCPU(), 8)
}

// Result is the outcome for a single file.
type Result struct {
	Path      string
	Version   string // empty when the header could not be parsed
	Backend   reader.Backend
	StartXRef uint64
	Table     *core.XRefTable // nil on failure
	Err       error
	Duration  time.Duration
}

// OK reports whether the table was recovered.
func (r Result) OK() bool {
	return r.Err == nil
}

// File recovers the xref table of one file.
func File(path string, opts Options) (res Result) {
	start := time.Now()
	res = Result{Path: path, Backend: opts.Backend}
	defer func() { res.Duration = time.Since(start) }()

	r, err := reader.Open(path, opts.Backend)
	if err != nil {
		res.Err = err
		return res
	}
	defer r.Close()
	res.Backend = r.Backend()

	if opts.SniffHeader {
		f, err := format.DetectFromReader(r)
		if err != nil {
			res.Err = fmt.Errorf("failed to read header: %w", err)
			return res
		}
		if f != format.PDF {
			res.Err = ErrNotPDF
			return res
		}
	}

	if v, err := r.Version(); err == nil {
		res.Version = v.String()
	}

	x, err := r.XRef(opts.XRef)
	if err != nil {
		res.Err = err
		return res
	}
	res.StartXRef = x.StartXRef
	res.Table = x.Table
	return res
}

// Files recovers the tables of paths concurrently. Results arrive in
// completion order; the channel is closed once every started file is done.
// Cancelling ctx stops handing out new files. The caller must drain the
// channel.
func Files(ctx context.Context, paths []string, opts Options) <-chan Result {
	workers := opts.workers()
	results := make(chan Result, min(workers*2, 64))
	jobs := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- File(path, opts)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Discover expands roots into the PDF files to scan. Directories are walked
// recursively and filtered by extension; files named explicitly are always
// kept. The result is sorted and free of duplicates.
func Discover(roots []string) ([]string, error) {
	var paths []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			paths = append(paths, filepath.Clean(root))
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() && format.Detect(path) == format.PDF {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// Run discovers the PDFs under roots, scans them and calls fn (if not nil)
// for each result. It returns the summary and ctx's error if the run was
// cancelled.
func Run(ctx context.Context, roots []string, opts Options, fn func(Result)) (*Summary, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	paths, err := Discover(roots)
	if err != nil {
		return nil, err
	}

	summary := NewSummary()
	log = log.With("run", summary.RunID)
	log.Info("scan started", "files", len(paths), "workers", opts.workers(), "backend", opts.Backend)

	for res := range Files(ctx, paths, opts) {
		summary.Add(res)
		if res.OK() {
			log.Debug("xref recovered", "path", res.Path, "records", res.Table.Len(), "startxref", res.StartXRef, "took", res.Duration)
		} else {
			log.Warn("xref not recovered", "path", res.Path, "kind", KindName(res.Err), "error", res.Err)
		}
		if fn != nil {
			fn(res)
		}
	}

	log.Info("scan finished", "ok", summary.OK, "failed", summary.Failed, "records", summary.Records)
	return summary, ctx.Err()
}
