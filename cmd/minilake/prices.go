package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/chevalinn/minilake/internal/app"
	"github.com/chevalinn/minilake/internal/models"
)

// pricesCmd holds the flags for the 'prices' subcommand.
type pricesCmd struct {
	configPath string
	limit      int
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "show staged daily prices for a window" }
func (*pricesCmd) Usage() string {
	return `minilake prices [-config <file>] [-n <rows>] <ticker> <start> <end>

  Prints the staged daily prices for the inclusive window, running the
  extract and transform steps first if the window has not been staged.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "Path to the config file")
	f.IntVar(&c.limit, "n", 0, "Print at most n rows (0 for all)")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	frame, err := a.Pipeline.GetDailyPrices(ctx, ticker, start, end)
	if models.IsNoData(err) {
		fmt.Printf("No data available for %s between %s and %s\n", ticker, start, end)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printFrame(frame, c.limit)
	return subcommands.ExitSuccess
}

// printFrame renders a frame as an aligned table on stdout.
func printFrame(frame *models.Frame, limit int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, col := range frame.Columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)

	rows := frame.NumRows()
	if limit > 0 && limit < rows {
		rows = limit
	}
	for i := 0; i < rows; i++ {
		for j := range frame.Columns {
			if j > 0 {
				fmt.Fprint(w, "\t")
			}
			cell := frame.Rows[i][j]
			if cell == nil {
				fmt.Fprint(w, "-")
			} else {
				fmt.Fprintf(w, "%v", cell)
			}
		}
		fmt.Fprintln(w)
	}
	w.Flush()

	if rows < frame.NumRows() {
		fmt.Printf("... %d more rows\n", frame.NumRows()-rows)
	}
}
