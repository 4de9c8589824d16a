// Package server exposes xref recovery over HTTP.
package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/internal/logger"
	"github.com/tsawler/pdfxref/reader"
	"github.com/tsawler/pdfxref/scan"
)

// DefaultMaxBodyBytes caps uploaded documents at 64 MiB.
const DefaultMaxBodyBytes = 64 << 20

const headerRequestID = "X-Request-ID"

// Config configures a Server.
type Config struct {
	MaxBodyBytes int64
	XRef         core.Options
	Logger       logger.Logger
}

// DefaultConfig returns the configuration used by New when fields are zero.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes: DefaultMaxBodyBytes,
		XRef:         core.DefaultOptions(),
		Logger:       logger.Discard(),
	}
}

// Server handles xref requests.
type Server struct {
	cfg Config
}

// New returns a Server. Zero fields of cfg take their defaults.
func New(cfg Config) *Server {
	def := DefaultConfig()
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.XRef.EOFSearchLimit <= 0 {
		cfg.XRef.EOFSearchLimit = def.XRef.EOFSearchLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	return &Server{cfg: cfg}
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/xref", s.handleXRef)
	e.GET("/healthz", s.handleHealth)
}

// XRefResponse is the body of a successful POST /v1/xref.
type XRefResponse struct {
	RequestID string            `json:"request_id"`
	Name      string            `json:"name,omitempty"`
	Version   string            `json:"version,omitempty"`
	Size      int64             `json:"size"`
	StartXRef uint64            `json:"startxref"`
	First     uint64            `json:"first"`
	Count     int               `json:"count"`
	InUse     int               `json:"in_use"`
	Free      int               `json:"free"`
	Records   []core.XRefRecord `json:"records,omitempty"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Offset  *int64 `json:"offset,omitempty"`
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleXRef(c *echo.Context) error {
	reqID := c.Request().Header.Get(headerRequestID)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	c.Response().Header().Set(headerRequestID, reqID)
	log := s.cfg.Logger.With("request_id", reqID)

	opts := s.cfg.XRef
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return writeError(c, http.StatusBadRequest, "invalid limit "+strconv.Quote(v), "", nil)
		}
		opts.EOFSearchLimit = n
	}
	if v := c.QueryParam("lenient"); v != "" {
		lenient, err := strconv.ParseBool(v)
		if err != nil {
			return writeError(c, http.StatusBadRequest, "invalid lenient "+strconv.Quote(v), "", nil)
		}
		opts.VerifyStartXRef = !lenient
	}
	withRecords := true
	if v := c.QueryParam("records"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return writeError(c, http.StatusBadRequest, "invalid records "+strconv.Quote(v), "", nil)
		}
		withRecords = b
	}

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "read body: "+err.Error(), "", nil)
	}
	if int64(len(data)) > s.cfg.MaxBodyBytes {
		return writeError(c, http.StatusRequestEntityTooLarge,
			"document exceeds "+strconv.FormatInt(s.cfg.MaxBodyBytes, 10)+" bytes", "", nil)
	}
	if len(data) == 0 {
		return writeError(c, http.StatusBadRequest, "empty body", "", nil)
	}

	name := c.QueryParam("name")
	r := reader.FromBytes(name, data)
	defer r.Close()

	res, err := r.XRef(opts)
	if err != nil {
		log.Warn("xref not recovered", "name", name, "size", len(data), "error", err)
		var offset *int64
		var cerr *core.Error
		if errors.As(err, &cerr) {
			offset = &cerr.Offset
		}
		return writeError(c, statusFor(err), err.Error(), scan.KindName(err), offset)
	}

	inUse, free := res.Table.Counts()
	resp := XRefResponse{
		RequestID: reqID,
		Name:      name,
		Size:      r.Size(),
		StartXRef: res.StartXRef,
		First:     res.Table.First,
		Count:     res.Table.Len(),
		InUse:     inUse,
		Free:      free,
	}
	if v, err := r.Version(); err == nil {
		resp.Version = v.String()
	}
	if withRecords {
		resp.Records = res.Table.Records
	}

	log.Info("xref recovered", "name", name, "size", len(data), "startxref", res.StartXRef, "records", resp.Count)
	return writeJSON(c, http.StatusOK, resp)
}

// statusFor maps a recovery failure to an HTTP status. Damaged documents are
// the client's problem; read failures are ours.
func statusFor(err error) int {
	if errors.Is(err, core.ErrIO) {
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}

func writeError(c *echo.Context, status int, msg, kind string, offset *int64) error {
	return writeJSON(c, status, map[string]any{
		"error": ErrorResponse{
			Message: msg,
			Kind:    kind,
			Offset:  offset,
		},
	})
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.JSONBlob(status, b)
}
