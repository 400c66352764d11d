package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/statement"
	"github.com/google/subcommands"
)

type identifyCmd struct {
	encoding string
}

func (*identifyCmd) Name() string     { return "identify" }
func (*identifyCmd) Synopsis() string { return "tell which extractor and document types accept statements" }
func (*identifyCmd) Usage() string {
	return `stx identify [-encoding <name>] [<file>...]

  Prints, for each statement, the extractors recognizing it and their document
  types accepting it. Useful to debug the signature of a rule file.
`
}

func (p *identifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.encoding, "encoding", "utf-8", "Text encoding of the input (utf-8, latin1, windows-1252).")
}

func (p *identifyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	enc, err := ParseEncoding(p.encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	reg, err := NewRegistry(newLogger(), statement.FirstWins)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
		return subcommands.ExitFailure
	}
	docs, err := ReadDocuments(f.Args(), enc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	for _, doc := range docs {
		found := false
		for _, e := range reg.Extractors() {
			if !e.Recognizes(doc) {
				continue
			}
			found = true
			types := e.Identify(doc)
			if len(types) == 0 {
				fmt.Printf("%s: %s, no document type\n", doc.Source(), e.Label())
				continue
			}
			fmt.Printf("%s: %s, %s\n", doc.Source(), e.Label(), strings.Join(types, ", "))
		}
		if !found {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", doc.Source(), statement.ErrUnrecognizedDocument)
			status = subcommands.ExitFailure
		}
	}
	return status
}
