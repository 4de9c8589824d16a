package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/scan"
)

// reporter writes scan results as they arrive, then the summary.
type reporter interface {
	Result(res scan.Result) error
	Summary(s *scan.Summary) error
}

func newReporter(format string, w io.Writer, records bool) (reporter, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return &textReporter{w: w, records: records}, nil
	case "json":
		return &jsonReporter{enc: json.NewEncoder(w), records: records}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type textReporter struct {
	w       io.Writer
	records bool
}

func (r *textReporter) Result(res scan.Result) error {
	if !res.OK() {
		_, err := fmt.Fprintf(r.w, "%s: error [%s]: %v\n", res.Path, scan.KindName(res.Err), res.Err)
		return err
	}

	inUse, free := res.Table.Counts()
	version := res.Version
	if version == "" {
		version = "?"
	}
	_, err := fmt.Fprintf(r.w, "%s: PDF %s, xref at %d, %d records from object %d (%d in use, %d free)\n",
		res.Path, version, res.StartXRef, res.Table.Len(), res.Table.First, inUse, free)
	if err != nil || !r.records {
		return err
	}

	for i, rec := range res.Table.Records {
		_, err := fmt.Fprintf(r.w, "  %6d  %010d %05d %c\n", res.Table.First+uint64(i), rec.Offset, rec.Generation, byte(rec.Type))
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *textReporter) Summary(s *scan.Summary) error {
	_, err := fmt.Fprintf(r.w, "\n%d files, %d ok, %d failed, %d records\n", s.Files, s.OK, s.Failed, s.Records)
	if err != nil || len(s.ByKind) == 0 {
		return err
	}
	for _, kind := range sortedKeys(s.ByKind) {
		if _, err := fmt.Fprintf(r.w, "  %-18s %d\n", kind, s.ByKind[kind]); err != nil {
			return err
		}
	}
	return nil
}

// fileReport is one line of JSON output.
type fileReport struct {
	Path       string            `json:"path"`
	Version    string            `json:"version,omitempty"`
	Backend    string            `json:"backend"`
	DurationMS float64           `json:"duration_ms"`
	StartXRef  *uint64           `json:"startxref,omitempty"`
	First      *uint64           `json:"first,omitempty"`
	Count      int               `json:"count"`
	Records    []core.XRefRecord `json:"records,omitempty"`
	Error      string            `json:"error,omitempty"`
	Kind       string            `json:"kind,omitempty"`
}

type summaryReport struct {
	Summary *scan.Summary `json:"summary"`
}

type jsonReporter struct {
	enc     *json.Encoder
	records bool
}

func (r *jsonReporter) Result(res scan.Result) error {
	out := fileReport{
		Path:       res.Path,
		Version:    res.Version,
		Backend:    res.Backend.String(),
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
	}
	if res.OK() {
		out.StartXRef = &res.StartXRef
		out.First = &res.Table.First
		out.Count = res.Table.Len()
		if r.records {
			out.Records = res.Table.Records
		}
	} else {
		out.Error = res.Err.Error()
		out.Kind = scan.KindName(res.Err)
	}
	return r.enc.Encode(out)
}

func (r *jsonReporter) Summary(s *scan.Summary) error {
	return r.enc.Encode(summaryReport{Summary: s})
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
