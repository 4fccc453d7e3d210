package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/aristath/tefas/internal/config"
	"github.com/aristath/tefas/internal/di"
	"github.com/aristath/tefas/internal/renderer"
	"github.com/aristath/tefas/internal/utils"
)

type compareCmd struct {
	workers int
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "analyze several funds side by side" }
func (*compareCmd) Usage() string {
	return `tefas compare [-workers N] CODE...

  Analyzes every fund concurrently and prints one row per fund.
  Codes may also be given as a comma separated list. A fund that fails
  is listed below the table and does not stop the others.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.workers, "workers", 0, "Funds analyzed at the same time (default TEFAS_WORKERS)")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	codes, invalid := utils.ParseFundCodes(f.Args()...)
	codes = append(codes, invalid...) // reported per fund by the analyzer
	if len(codes) == 0 {
		fmt.Fprint(f.Output(), c.Usage())
		return subcommands.ExitUsageError
	}
	if c.workers < 0 {
		fmt.Fprintf(f.Output(), "-workers must be positive\n")
		return subcommands.ExitUsageError
	}

	container, _, err := open(ctx, di.Options{}, func(cfg *config.Config) {
		if c.workers > 0 {
			cfg.Workers = c.workers
		}
	})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	results, err := container.Analyzer.Compare(ctx, codes)
	if err != nil && results == nil {
		fail(err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ComparisonMarkdown(results))

	for _, r := range results {
		if r.Err == nil {
			return subcommands.ExitSuccess
		}
	}
	return subcommands.ExitFailure
}
