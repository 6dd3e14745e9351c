package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/config"
	"github.com/etnz/taxlots/quote"
	"github.com/etnz/taxlots/renderer"
	"github.com/google/subcommands"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	portfolio string
	fetch     bool
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "value the open lots at current prices" }
func (*holdingCmd) Usage() string {
	return `taxlots holding [-p <portfolio>] [-fetch]

  Displays the positions of the portfolio valued at current prices, and the
  weight of each position. Prices are read from the prices file, or fetched
  from the configured quote provider with -fetch.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio name")
	f.BoolVar(&c.fetch, "fetch", false, "Fetch the latest prices from the quote provider")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logger := newLogger(cfg.LogLevel).With().Str("component", "holding").Logger()
	ctx = logger.WithContext(ctx)

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

	var prices map[string]taxlots.Money
	if c.fetch {
		var provider quote.Provider
		if provider, err = newProvider(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		symbols := book.Tracker.Symbols()
		logger.Debug().Strs("symbols", symbols).Msg("fetching prices")
		prices, err = quote.FetchAll(ctx, provider, symbols, cfg.Workers)
	} else {
		prices, err = decodePrices(cfg.PricesFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	summary, err := book.Valuate(prices)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HoldingMarkdown(summary, taxlots.Today()))
	return subcommands.ExitSuccess
}

// newProvider creates the quote provider of the configuration.
func newProvider(cfg *config.Config) (quote.Provider, error) {
	switch strings.ToLower(cfg.Quote.Provider) {
	case "tradegate":
		return &quote.Tradegate{
			BaseURL: cfg.Quote.BaseURL,
			ISIN:    cfg.Quote.ISIN,
			Client:  quote.Daily(cfg.Quote.CacheDir),
		}, nil
	case "jsonpath":
		return &quote.JSONPath{
			URL:      cfg.Quote.BaseURL,
			Path:     cfg.Quote.Path,
			Currency: cfg.Quote.Currency,
			Client:   quote.Daily(cfg.Quote.CacheDir),
		}, nil
	default:
		prices, err := decodePrices(cfg.PricesFile)
		if err != nil {
			return nil, err
		}
		return quote.Static(prices), nil
	}
}
