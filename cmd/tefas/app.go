package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/config"
	"github.com/aristath/tefas/internal/di"
	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/export"
	"github.com/aristath/tefas/internal/renderer"
	"github.com/aristath/tefas/pkg/logger"
)

var verbose = flag.Bool("v", false, "Log debug output to stderr")

// cliLogLevel is quieter than the server default so reports stay readable
func cliLogLevel() string {
	if *verbose {
		return "debug"
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "warn"
}

// open loads the configuration, applies the command's flag overrides and
// wires the parts the command needs. The caller closes the returned container.
func open(ctx context.Context, opts di.Options, overrides ...func(*config.Config)) (*di.Container, zerolog.Logger, error) {
	log := logger.New(logger.Config{Level: cliLogLevel(), Pretty: true})

	cfg, err := config.Load()
	if err != nil {
		return nil, log, fmt.Errorf("failed to load configuration: %w", err)
	}
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, log, err
	}

	container, err := di.Wire(ctx, cfg, log, opts)
	if err != nil {
		return nil, log, err
	}
	return container, log, nil
}

func printMarkdown(md string) {
	fmt.Print(renderer.Terminal(md, 100))
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// parseDay parses an optional YYYY-MM-DD flag value
func parseDay(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: -%s must be YYYY-MM-DD, got %q", domain.ErrValidation, name, value)
	}
	return t, nil
}

// writeExport writes stats to path, or to stdout when path is "-"
func writeExport(path string, f export.Format, stats domain.FundStatistics) error {
	if path == "-" {
		return export.Write(os.Stdout, f, stats)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.Write(file, f, stats); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
