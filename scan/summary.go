package scan

import (
	"errors"
	"os"

	"github.com/google/uuid"

	"github.com/tsawler/pdfxref/core"
)

// Summary aggregates the results of a run.
type Summary struct {
	RunID   string         `json:"run_id"`
	Files   int            `json:"files"`
	OK      int            `json:"ok"`
	Failed  int            `json:"failed"`
	Records int            `json:"records"`
	ByKind  map[string]int `json:"failures_by_kind,omitempty"`
}

// NewSummary returns an empty summary with a fresh run id.
func NewSummary() *Summary {
	return &Summary{
		RunID:  uuid.NewString(),
		ByKind: make(map[string]int),
	}
}

// Add counts one result.
func (s *Summary) Add(r Result) {
	s.Files++
	if r.OK() {
		s.OK++
		s.Records += r.Table.Len()
		return
	}
	s.Failed++
	s.ByKind[KindName(r.Err)]++
}

// KindName returns a short, stable name for the kind of a failure.
func KindName(err error) string {
	switch kind := core.KindOf(err); {
	case err == nil:
		return ""
	case kind != nil:
		return coreKindName(kind)
	case errors.Is(err, ErrNotPDF):
		return "not_pdf"
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return "open"
	default:
		return "io"
	}
}

func coreKindName(kind error) string {
	switch kind {
	case core.ErrIO:
		return "io"
	case core.ErrMarkerNotFound:
		return "marker_not_found"
	case core.ErrInvalidOffset:
		return "invalid_offset"
	case core.ErrMissingStartXRef:
		return "missing_startxref"
	case core.ErrMalformedHeader:
		return "malformed_header"
	case core.ErrMissingCount:
		return "missing_count"
	case core.ErrMalformedRecord:
		return "malformed_record"
	default:
		return "unknown"
	}
}
