package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/aristath/tefas/internal/di"
	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/renderer"
)

type historyCmd struct {
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list stored snapshots of a fund" }
func (*historyCmd) Usage() string {
	return `tefas history [-n N] CODE

  Prints the snapshots saved by "analyze -save" or by the server's
  scheduled refresh, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of snapshots to show, 0 for all")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(f.Output(), c.Usage())
		return subcommands.ExitUsageError
	}
	code, err := domain.NormalizeFundCode(f.Arg(0))
	if err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}

	container, _, err := open(ctx, di.Options{Database: true})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	snaps, err := container.Snapshots.History(ctx, code, c.limit)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HistoryMarkdown(code, snaps))
	return subcommands.ExitSuccess
}
