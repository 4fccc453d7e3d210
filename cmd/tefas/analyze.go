package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/aristath/tefas/internal/di"
	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/export"
	"github.com/aristath/tefas/internal/modules/statistics"
	"github.com/aristath/tefas/internal/renderer"
	"github.com/aristath/tefas/internal/services/analyzer"
)

type analyzeCmd struct {
	start    string
	end      string
	jsonPath string
	csvPath  string
	upload   bool
	save     bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "analyze one fund and print its performance report" }
func (*analyzeCmd) Usage() string {
	return `tefas analyze [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-json file] [-csv file] [-s3] [-save] CODE

  Fetches the fund page, cleans the price history and prints total return,
  volatility, CAGR, Sharpe ratio and beta together with the asset allocation.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "Ignore prices before this date")
	f.StringVar(&c.end, "end", "", "Ignore prices after this date")
	f.StringVar(&c.jsonPath, "json", "", "Also write the statistics as JSON to this file")
	f.StringVar(&c.csvPath, "csv", "", "Also write the statistics as CSV to this file")
	f.BoolVar(&c.upload, "s3", false, "Upload the exports to the configured S3 bucket")
	f.BoolVar(&c.save, "save", false, "Store the result in the snapshot database")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(f.Output(), c.Usage())
		return subcommands.ExitUsageError
	}

	var window analyzer.Window
	var err error
	if window.Start, err = parseDay("start", c.start); err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}
	if window.End, err = parseDay("end", c.end); err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}
	if !window.Start.IsZero() && !window.End.IsZero() && window.End.Before(window.Start) {
		fail(fmt.Errorf("%w: -end is before -start", domain.ErrValidation))
		return subcommands.ExitUsageError
	}

	container, log, err := open(ctx, di.Options{Database: c.save, Uploader: c.upload})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer container.Close()

	if c.upload && container.Uploader == nil {
		fail(errors.New("-s3 requires TEFAS_S3_BUCKET"))
		return subcommands.ExitUsageError
	}

	report, err := container.Analyzer.AnalyzeWithin(ctx, f.Arg(0), window)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ReportMarkdown(report))

	outputs := map[export.Format]string{export.FormatJSON: c.jsonPath, export.FormatCSV: c.csvPath}
	for _, format := range []export.Format{export.FormatJSON, export.FormatCSV} {
		path := outputs[format]
		if path == "" {
			continue
		}
		if err := writeExport(path, format, report.Statistics); err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		log.Info().Str("path", path).Str("format", string(format)).Msg("Statistics written")
	}

	if c.upload {
		formats := []export.Format{export.FormatJSON}
		if c.csvPath != "" {
			formats = append(formats, export.FormatCSV)
		}
		for _, format := range formats {
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
			fmt.Printf("Uploaded %s\n", loc)
		}
	}

	if c.save {
		id, err := container.Snapshots.Save(ctx, statistics.Snapshot{
			Statistics: report.Statistics,
			Allocation: report.Allocation,
			Benchmark:  report.Benchmark,
			Series:     report.Series,
		})
		if err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		log.Info().Str("id", id).Msg("Snapshot saved")
	}

	return subcommands.ExitSuccess
}
