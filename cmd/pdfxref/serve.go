package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/tsawler/pdfxref/internal/logger"
	"github.com/tsawler/pdfxref/server"
)

type serveFlags struct {
	addr        string
	limit       int64
	lenient     bool
	maxBody     int64
	readTimeout time.Duration
}

// newServer builds the echo instance served by the serve command.
func newServer(f serveFlags, log logger.Logger) *echo.Echo {
	cfg := server.DefaultConfig()
	cfg.MaxBodyBytes = f.maxBody
	cfg.XRef.EOFSearchLimit = int(f.limit)
	cfg.XRef.VerifyStartXRef = !f.lenient
	cfg.Logger = log

	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	server.New(cfg).Register(e)
	return e
}

func serveCmd() *cli.Command {
	var f serveFlags

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve xref recovery over HTTP",
		Flags: append(decodeFlags(&f.limit, &f.lenient),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &f.addr,
			},
			&cli.Int64Flag{
				Name:        "max-body",
				Usage:       "largest accepted document in bytes",
				Value:       server.DefaultMaxBodyBytes,
				Destination: &f.maxBody,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &f.readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, configFromContext(ctx), &f)
			if f.limit <= 0 {
				return fmt.Errorf("serve: --limit must be positive, got %d", f.limit)
			}

			log := logger.FromContext(ctx)
			e := newServer(f, log)

			log.Info("starting server", "address", f.addr)
			sc := echo.StartConfig{
				Address: f.addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadTimeout = f.readTimeout
					srv.ReadHeaderTimeout = f.readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
