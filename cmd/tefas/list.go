package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/renderer"
)

type listCmd struct {
	asJSON bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list popular fund codes and names" }
func (*listCmd) Usage() string {
	return `tefas list [-json]

  Prints a short catalog of well-known TEFAS funds.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "Print the catalog as JSON")
}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprint(f.Output(), c.Usage())
		return subcommands.ExitUsageError
	}
	if !c.asJSON {
		printMarkdown(renderer.CatalogMarkdown(domain.PopularFunds))
		return subcommands.ExitSuccess
	}
	if err := writeCatalogJSON(os.Stdout, domain.PopularFunds); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeCatalogJSON(w io.Writer, funds []domain.FundInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(funds)
}
