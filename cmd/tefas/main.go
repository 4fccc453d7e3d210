// Command tefas analyses TEFAS fund pages from the terminal.
//
// Usage:
//
//	tefas analyze [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-json file] [-csv file] [-s3] [-save] CODE
//	tefas compare [-workers N] CODE...
//	tefas export [-format json|csv] [-o file] [-s3] CODE
//	tefas history [-n N] CODE
//	tefas list [-json]
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&analyzeCmd{}, "funds")
	commander.Register(&compareCmd{}, "funds")
	commander.Register(&exportCmd{}, "funds")
	commander.Register(&historyCmd{}, "snapshots")
	commander.Register(&listCmd{}, "catalog")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
