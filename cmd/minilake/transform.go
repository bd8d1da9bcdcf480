package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/chevalinn/minilake/internal/app"
)

// transformCmd holds the flags for the 'transform' subcommand.
type transformCmd struct {
	configPath string
}

func (*transformCmd) Name() string { return "transform" }
func (*transformCmd) Synopsis() string {
	return "derive staged, fact, and dim artifacts from raw history"
}
func (*transformCmd) Usage() string {
	return `minilake transform [-config <file>] <ticker> <start> <end>

  Filters the ticker's raw artifact to the inclusive window and derives the
  staged, price-fact, and date-dimension artifacts. Requires a prior extract.
`
}

func (c *transformCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "Path to the config file")
}

func (c *transformCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ticker, start, end, ok := windowArgs(f)
	if !ok {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	a, err := app.NewApp(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	res, err := a.Pipeline.Transform(ctx, ticker, start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Transformed %s [%s, %s]: %d staged, %d fact, %d dim rows\n",
		res.Ticker, res.Start, res.End, res.StagedRows, res.FactRows, res.DimRows)
	for _, w := range res.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return subcommands.ExitSuccess
}
