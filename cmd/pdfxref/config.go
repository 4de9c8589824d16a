package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the pdfxref configuration file
// (~/.config/pdfxref/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	// Decoding
	EOFSearchLimit  *int  `yaml:"eof_search_limit"`
	VerifyStartXRef *bool `yaml:"verify_startxref"`

	// Scanning
	Backend string `yaml:"backend"`
	Workers *int   `yaml:"workers"`
	Output  string `yaml:"output"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
	MaxBodyBytes  *int64 `yaml:"max_body_bytes"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pdfxref", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero
// Config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDecodeConfig applies config file defaults to the decoder flags when the
// corresponding CLI flag was not explicitly set.
func applyDecodeConfig(c *cli.Command, cfg Config, limit *int64, lenient *bool) {
	if cfg.EOFSearchLimit != nil && !c.IsSet("limit") {
		*limit = int64(*cfg.EOFSearchLimit)
	}
	if cfg.VerifyStartXRef != nil && !c.IsSet("lenient") {
		*lenient = !*cfg.VerifyStartXRef
	}
}

// applyScanConfig applies config file defaults to scan command variables.
func applyScanConfig(c *cli.Command, cfg Config, f *scanFlags) {
	applyDecodeConfig(c, cfg, &f.limit, &f.lenient)
	if cfg.Backend != "" && !c.IsSet("backend") {
		f.backend = cfg.Backend
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		f.workers = int64(*cfg.Workers)
	}
	if cfg.Output != "" && !c.IsSet("format") {
		f.format = cfg.Output
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, f *serveFlags) {
	applyDecodeConfig(c, cfg, &f.limit, &f.lenient)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		f.addr = cfg.ServerAddress
	}
	if cfg.MaxBodyBytes != nil && !c.IsSet("max-body") {
		f.maxBody = *cfg.MaxBodyBytes
	}
}
