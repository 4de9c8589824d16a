package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tsawler/pdfxref/internal/logger"
)

const (
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagConfig,
			Usage: "path to config file",
			Value: configPath(),
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "log level (debug, info, warn, error)",
			Value: "warn",
		},
		&cli.StringFlag{
			Name:  flagLogFormat,
			Usage: "log format (pretty, json, text)",
			Value: "pretty",
		},
	}
}

type configKey struct{}

// setup loads the config file and installs the logger before any command
// runs.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(cmd.String(flagConfig))
	if err != nil {
		return ctx, err
	}

	level, format := cmd.String(flagLogLevel), cmd.String(flagLogFormat)
	if cfg.LogLevel != "" && !cmd.IsSet(flagLogLevel) {
		level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !cmd.IsSet(flagLogFormat) {
		format = cfg.LogFormat
	}

	log, err := logger.ForFormat(format, cmd.Root().ErrWriter, logger.ParseLevel(level))
	if err != nil {
		return ctx, fmt.Errorf("invalid --%s: %w", flagLogFormat, err)
	}

	ctx = logger.WithContext(ctx, log)
	return context.WithValue(ctx, configKey{}, cfg), nil
}

func configFromContext(ctx context.Context) Config {
	cfg, _ := ctx.Value(configKey{}).(Config)
	return cfg
}
