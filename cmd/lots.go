package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/renderer"
	"github.com/google/subcommands"
)

type lotsCmd struct {
	portfolio string
	date      string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list the open lots of a portfolio" }
func (*lotsCmd) Usage() string {
	return `taxlots lots [-p <portfolio>] [-d <date>]

  Lists the open lots of each symbol, oldest first, as of a date.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio name")
	f.StringVar(&c.date, "d", taxlots.Today().String(), "Date of the report. See the user manual for supported date formats.")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := taxlots.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ledger, err := decodeLedger(ledgerPath(cfg, c.portfolio))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	tracker, err := replayUntil(ledger, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.LotsMarkdown(tracker, on))
	return subcommands.ExitSuccess
}

// replayUntil replays the transactions of the ledger dated on or before day.
func replayUntil(ledger *taxlots.Ledger, on taxlots.Date) (*taxlots.Tracker, error) {
	tracker := taxlots.NewTracker()
	for tx := range ledger.Transactions() {
		if tx.Date.After(on) {
			break
		}
		if _, err := tracker.Apply(tx); err != nil {
			return nil, fmt.Errorf("cannot apply %s of %s %q on %s: %w", tx.Type, tx.Quantity, tx.Symbol, tx.Date, err)
		}
	}
	return tracker, nil
}
