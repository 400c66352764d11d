package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/statement/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	name := path.Base(os.Args[0])
	// answers shell completion requests (COMP_LINE set), and returns otherwise.
	completion().Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if sub := flag.Arg(0); sub != "" && !cmd.IsCommand(sub) {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	encodings := predict.Set{"utf-8", "latin1", "windows-1252"}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"rules": predict.Files("*.yaml"),
			"v":     predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"extract": {
				Flags: map[string]complete.Predictor{
					"format":    predict.Set{"jsonl", "md"},
					"encoding":  encodings,
					"conflicts": predict.Set{"first", "sum", "reject"},
					"workers":   predict.Something,
					"strict":    predict.Nothing,
					"p":         predict.Set{"day", "week", "month", "quarter", "year"},
					"s":         predict.Something,
					"d":         predict.Something,
				},
				Args: predict.Files("*.txt"),
			},
			"identify": {
				Flags: map[string]complete.Predictor{"encoding": encodings},
				Args:  predict.Files("*.txt"),
			},
			"rules": {Args: predict.Files("*.yaml")},
			"topic": {
				Flags: map[string]complete.Predictor{"list": predict.Nothing},
				Args:  predict.Set{"readme", "rules", "output", "conflicts", "*"},
			},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
