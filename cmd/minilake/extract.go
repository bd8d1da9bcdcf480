package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/chevalinn/minilake/internal/app"
	"github.com/chevalinn/minilake/internal/models"
)

// extractCmd holds the flags for the 'extract' subcommand.
type extractCmd struct {
	configPath string
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "download raw daily price history for a ticker" }
func (*extractCmd) Usage() string {
	return `minilake extract [-config <file>] <ticker> <start> <end>

  Fetches daily OHLCV history for the inclusive date window (YYYY-MM-DD)
  and overwrites the ticker's raw artifact.
`
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "Path to the config file")
}

func (c *extractCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	rows, err := a.Pipeline.Extract(ctx, ticker, start, end)
	if models.IsNoData(err) {
		fmt.Printf("No data available for %s between %s and %s\n", ticker, start, end)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Extracted %d rows for %s to %s\n", rows, ticker, a.Store.RawPath(ticker))
	return subcommands.ExitSuccess
}

// windowArgs reads the common <ticker> <start> <end> positional arguments.
func windowArgs(f *flag.FlagSet) (ticker, start, end string, ok bool) {
	if f.NArg() != 3 {
		return "", "", "", false
	}
	return f.Arg(0), f.Arg(1), f.Arg(2), true
}
