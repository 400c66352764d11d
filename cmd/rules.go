package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/statement"
	"github.com/etnz/statement/rules"
	"github.com/google/subcommands"
)

type rulesCmd struct{}

func (*rulesCmd) Name() string     { return "rules" }
func (*rulesCmd) Synopsis() string { return "validate rule files, or list the known extractors" }
func (*rulesCmd) Usage() string {
	return `stx rules [<file>...]

  Validates the given YAML rule files and reports every problem found.
  Without files, lists the built-in extractors and those of the -rules files.

Usage Examples:
$ stx rules mybank.yaml
$ stx -rules mybank.yaml rules
`
}

func (*rulesCmd) SetFlags(*flag.FlagSet) {}

func (p *rulesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		reg, err := NewRegistry(newLogger(), statement.FirstWins)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(listExtractors(reg))
		return subcommands.ExitSuccess
	}

	status := subcommands.ExitSuccess
	for _, path := range f.Args() {
		file, err := rules.Load(path)
		if err == nil {
			_, err = file.Compile(statement.NewSecurities())
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Fprintf(os.Stderr, "✅ %s: %s, %d document types\n", path, file.Label, len(file.DocumentTypes))
	}
	return status
}

func listExtractors(reg *statement.Registry) string {
	var b strings.Builder
	b.WriteString("| Extractor | Document type | Blocks |\n")
	b.WriteString("|:---|:---|---:|\n")
	for _, e := range reg.Extractors() {
		for _, dt := range e.DocumentTypes() {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", e.Label(), dt.Name(), dt.Blocks())
		}
	}
	return b.String()
}
