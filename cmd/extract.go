package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"slices"

	"github.com/etnz/statement"
	"github.com/etnz/statement/date"
	"github.com/etnz/statement/renderer"
	"github.com/google/subcommands"
)

type extractCmd struct {
	format    string
	encoding  string
	conflicts string
	workers   int
	strict    bool
	period    string
	start     string
	end       string
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "extract the transactions of broker statements" }
func (*extractCmd) Usage() string {
	return `stx extract [-format jsonl|md] [-encoding <name>] [-conflicts first|sum|reject] [-workers <n>] [-strict]
            [-p <period> | -s <start_date>] [-d <end_date>] [<file>...]

  Extracts the transactions of the given statement text files, or of stdin.
  Statements are recognized by the built-in extractors and the -rules files.
  Blocks that could not be extracted are reported on stderr.
  With -p, -s or -d only the transactions dated within the range are kept.

Usage Examples:
# JSON Lines, one transaction per line.
$ pdftotext -layout statement.pdf - | stx extract

# A markdown report of a whole folder.
$ stx extract -format md statements/*.txt

`
}

func (p *extractCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.format, "format", "jsonl", "Output format (jsonl, md).")
	f.StringVar(&p.encoding, "encoding", "utf-8", "Text encoding of the input (utf-8, latin1, windows-1252).")
	f.StringVar(&p.conflicts, "conflicts", "first", "What to do when a tax or fee is printed twice with different amounts (first, sum, reject).")
	f.IntVar(&p.workers, "workers", runtime.NumCPU(), "Number of documents extracted in parallel.")
	f.BoolVar(&p.strict, "strict", false, "Fail when a block could not be extracted.")
	f.StringVar(&p.period, "p", "", "Keep the transactions of the period (day, week, month, quarter, year) containing -d.")
	f.StringVar(&p.start, "s", "", "Keep the transactions from this date to -d. Overrides -p.")
	f.StringVar(&p.end, "d", "", "The end date of the range (defaults to today).")
}

func (p *extractCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.format != "jsonl" && p.format != "md" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q, want jsonl or md\n", p.format)
		return subcommands.ExitUsageError
	}
	policy, err := statement.ParseConflictPolicy(p.conflicts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	enc, err := ParseEncoding(p.encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var within *date.Range
	if p.period != "" || p.start != "" || p.end != "" {
		period := p.period
		if period == "" {
			period = "day"
		}
		r, err := date.ParseRange(period, p.start, p.end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date range: %v\n", err)
			return subcommands.ExitUsageError
		}
		within = &r
	}

	logger := newLogger()
	reg, err := NewRegistry(logger, policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
		return subcommands.ExitFailure
	}
	docs, err := ReadDocuments(f.Args(), enc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if within != nil {
		logger.Debug("keeping transactions within range", "range", within.Identifier())
	}
	results, err := reg.ExtractAll(ctx, docs, p.workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting statements: %v\n", err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	var items []*statement.Item
	var reports []*renderer.Report
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "Error extracting %s: %v\n", res.Source, res.Err)
			status = subcommands.ExitFailure
		}
		if within != nil {
			res.Items = slices.DeleteFunc(res.Items, func(it *statement.Item) bool { return !within.Contains(it.Date()) })
		}
		for _, failure := range res.Failures {
			logger.Warn("block not extracted", "document", res.Source, "error", failure)
			if p.strict {
				status = subcommands.ExitFailure
			}
		}
		items = append(items, res.Items...)
		reports = append(reports, renderer.NewReport(res))
	}

	switch p.format {
	case "md":
		printMarkdown(renderer.RenderReports(reports))
	default:
		if err := statement.EncodeItems(os.Stdout, items); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing transactions: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return status
}
