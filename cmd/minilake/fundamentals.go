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

// fundamentalsCmd holds the flags for the 'fundamentals' subcommand.
type fundamentalsCmd struct {
	configPath string
	force      bool
}

func (*fundamentalsCmd) Name() string     { return "fundamentals" }
func (*fundamentalsCmd) Synopsis() string { return "show merged fundamental metrics for a ticker" }
func (*fundamentalsCmd) Usage() string {
	return `minilake fundamentals [-config <file>] [-force] <ticker>

  Prints the merged fundamental metrics for a ticker, re-aggregating from
  the providers when the cached record is older than the configured TTL.
`
}

func (c *fundamentalsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "Path to the config file")
	f.BoolVar(&c.force, "force", false, "Re-aggregate even when the cached record is fresh")
}

func (c *fundamentalsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	ticker := f.Arg(0)

	a, err := app.NewApp(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	rec, err := a.Fundamentals.GetOrUpdate(ctx, ticker, c.force)
	if models.IsNoData(err) {
		fmt.Printf("No fundamental data available for %s\n", ticker)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s fundamentals (assembled %s)\n\n", rec.Ticker, rec.Timestamp.Format("2006-01-02 15:04"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Metric\tValue\tSource\tFiled")
	for _, name := range rec.MetricNames() {
		m := rec.Metrics[name]
		filed := m.FiledDate
		if filed == "" {
			filed = "-"
		}
		fmt.Fprintf(w, "%s\t%g\t%s\t%s\n", name, m.Value, m.Source, filed)
	}
	w.Flush()
	return subcommands.ExitSuccess
}
