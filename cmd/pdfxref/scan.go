package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tsawler/pdfxref/core"
	"github.com/tsawler/pdfxref/internal/logger"
	"github.com/tsawler/pdfxref/reader"
	"github.com/tsawler/pdfxref/scan"
)

type scanFlags struct {
	limit   int64
	lenient bool
	backend string
	workers int64
	format  string
	records bool
	sniff   bool
}

func decodeFlags(limit *int64, lenient *bool) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "lines scanned backward for %%EOF",
			Value:       core.DefaultEOFSearchLimit,
			Destination: limit,
		},
		&cli.BoolFlag{
			Name:        "lenient",
			Usage:       "accept an xref offset not preceded by startxref",
			Destination: lenient,
		},
	}
}

func scanCmd() *cli.Command {
	var f scanFlags

	return &cli.Command{
		Name:      "scan",
		Usage:     "Recover the xref tables of PDF files",
		ArgsUsage: "<file|dir>...",
		Flags: append(decodeFlags(&f.limit, &f.lenient),
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "how files are read (file, mmap, memory)",
				Value:       reader.BackendMmap.String(),
				Destination: &f.backend,
			},
			&cli.Int64Flag{
				Name:        "workers",
				Aliases:     []string{"j"},
				Usage:       "concurrent files (0 = number of CPUs)",
				Destination: &f.workers,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"o"},
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &f.format,
			},
			&cli.BoolFlag{
				Name:        "records",
				Usage:       "print every xref record",
				Destination: &f.records,
			},
			&cli.BoolFlag{
				Name:        "sniff",
				Usage:       "reject files without a %PDF- header",
				Destination: &f.sniff,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyScanConfig(cmd, configFromContext(ctx), &f)

			roots := cmd.Args().Slice()
			if len(roots) == 0 {
				return fmt.Errorf("scan: at least one file or directory is required")
			}
			if f.limit <= 0 {
				return fmt.Errorf("scan: --limit must be positive, got %d", f.limit)
			}

			backend, err := reader.ParseBackend(f.backend)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			rep, err := newReporter(f.format, cmd.Root().Writer, f.records)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			opts := scan.DefaultOptions()
			opts.Backend = backend
			opts.Workers = int(f.workers)
			opts.SniffHeader = f.sniff
			opts.XRef.EOFSearchLimit = int(f.limit)
			opts.XRef.VerifyStartXRef = !f.lenient
			opts.Logger = logger.FromContext(ctx)

			var writeErr error
			summary, err := scan.Run(ctx, roots, opts, func(res scan.Result) {
				if writeErr == nil {
					writeErr = rep.Result(res)
				}
			})
			if err != nil && summary == nil {
				return fmt.Errorf("scan: %w", err)
			}
			if writeErr != nil {
				return fmt.Errorf("scan: write report: %w", writeErr)
			}
			if err := rep.Summary(summary); err != nil {
				return fmt.Errorf("scan: write report: %w", err)
			}
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("scan: %d of %d files failed", summary.Failed, summary.Files)
			}
			return nil
		},
	}
}
