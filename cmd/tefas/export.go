package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/aristath/tefas/internal/di"
	"github.com/aristath/tefas/internal/export"
)

type exportCmd struct {
	format string
	output string
	upload bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write a fund's statistics as JSON or CSV" }
func (*exportCmd) Usage() string {
	return `tefas export [-format json|csv] [-o file] [-s3] CODE

  Analyzes the fund and writes the statistics record. Metrics that could
  not be computed are null in JSON and empty cells in CSV.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "json", "Output format: json or csv")
	f.StringVar(&c.output, "o", "-", "Output file, - for stdout")
	f.BoolVar(&c.upload, "s3", false, "Upload to the configured S3 bucket instead of writing a file")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(f.Output(), c.Usage())
		return subcommands.ExitUsageError
	}
	format, err := export.ParseFormat(c.format)
	if err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}

	container, _, err := open(ctx, di.Options{Uploader: c.upload})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	if c.upload && container.Uploader == nil {
		fail(errors.New("-s3 requires TEFAS_S3_BUCKET"))
		return subcommands.ExitUsageError
	}

	report, err := container.Analyzer.Analyze(ctx, f.Arg(0))
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}

	if !c.upload {
		if err := writeExport(c.output, format, report.Statistics); err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, report.Statistics); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	loc, err := container.Uploader.Upload(ctx, export.ObjectName(report.Statistics, format), format.ContentType(), buf.Bytes())
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Println(loc)
	return subcommands.ExitSuccess
}
