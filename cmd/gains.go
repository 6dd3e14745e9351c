package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/renderer"
	"github.com/etnz/taxlots/store"
	"github.com/google/subcommands"
)

type gainsCmd struct {
	portfolio string
	year      int
	stored    bool
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "report realized gains, their term and wash sales" }
func (*gainsCmd) Usage() string {
	return `taxlots gains [-p <portfolio>] [-y <year>] [-stored]

  Reports the gains realized during a tax year, short or long term, and the
  losses disallowed by wash sales. Use -y 0 for all years.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio name")
	f.IntVar(&c.year, "y", taxlots.Today().Year(), "Tax year, 0 for all years")
	f.BoolVar(&c.stored, "stored", false, "Read the gains stored by the last reconcile instead of replaying the ledger")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var gains []taxlots.RealizedGain
	if c.stored {
		db, err := store.Open(cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			return subcommands.ExitFailure
		}
		defer db.Close()
		if gains, err = db.Gains(ctx, c.portfolio, c.year); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading gains: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		ledger, err := decodeLedger(ledgerPath(cfg, c.portfolio))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		book, err := taxlots.Reconcile(ledger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		gains = book.Gains
	}

	printMarkdown(renderer.GainsMarkdown(taxlots.NewGainsReport(gains, c.year)))
	return subcommands.ExitSuccess
}
