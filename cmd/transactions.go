package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/renderer"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// txFlags are the flags shared by buy and sell.
type txFlags struct {
	portfolio  string
	date       string
	symbol     string
	quantity   string
	price      string
	commission string
	currency   string
	memo       string
}

func (c *txFlags) setFlags(f *flag.FlagSet, quantityUsage string) {
	f.StringVar(&c.portfolio, "p", "main", "Portfolio name")
	f.StringVar(&c.date, "d", taxlots.Today().String(), "Transaction date. See the user manual for supported date formats.")
	f.StringVar(&c.symbol, "s", "", "Symbol")
	f.StringVar(&c.quantity, "q", "0", quantityUsage)
	f.StringVar(&c.price, "price", "", "Price per unit")
	f.StringVar(&c.commission, "commission", "0", "Commission paid for the whole transaction")
	f.StringVar(&c.currency, "c", "", "Currency of the price, defaults to the configured currency")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the transaction")
}

// transaction builds the transaction described by the flags.
func (c *txFlags) transaction(typ taxlots.TxType, currency string) (taxlots.Transaction, error) {
	var tx taxlots.Transaction
	if c.symbol == "" || c.price == "" {
		return tx, fmt.Errorf("-s and -price are required")
	}
	day, err := taxlots.ParseDate(c.date)
	if err != nil {
		return tx, fmt.Errorf("invalid date: %w", err)
	}
	quantity, err := taxlots.ParseQuantity(c.quantity)
	if err != nil {
		return tx, fmt.Errorf("invalid quantity: %w", err)
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		return tx, fmt.Errorf("invalid price: %w", err)
	}
	commission, err := decimal.NewFromString(c.commission)
	if err != nil {
		return tx, fmt.Errorf("invalid commission: %w", err)
	}
	if c.currency != "" {
		currency = c.currency
	}
	if err := taxlots.ValidateCurrency(currency); err != nil {
		return tx, err
	}

	tx = taxlots.Transaction{
		Type:       typ,
		Date:       day,
		Symbol:     c.symbol,
		Quantity:   quantity,
		Price:      taxlots.M(price, currency),
		Commission: taxlots.M(commission, currency),
		Memo:       c.memo,
	}
	return tx, nil
}

// record validates the transaction against the portfolio ledger and appends
// it to the ledger file.
func (c *txFlags) record(typ taxlots.TxType) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tx, err := c.transaction(typ, cfg.Currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	path := ledgerPath(cfg, c.portfolio)
	ledger, err := decodeLedger(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	tx, err = ledger.Validate(tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	// the ID is also the ID of the lot a buy opens.
	tx.ID = uuid.New()

	if err := appendTransaction(path, tx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s, recorded in %s\n", renderer.Transaction(tx), path)
	return subcommands.ExitSuccess
}

// --- Buy Command ---

type buyCmd struct{ txFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy units, opening a new lot" }
func (*buyCmd) Usage() string {
	return `taxlots buy [-p <portfolio>] [-d <date>] -s <symbol> -q <quantity> -price <price> [-commission <amount>] [-c <currency>] [-m <memo>]

  Records the purchase of units of a symbol. The purchase opens a new lot whose
  unit cost includes the commission.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f, "Number of units") }

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(taxlots.Buy)
}

// --- Sell Command ---

type sellCmd struct{ txFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell units, consuming the oldest lots first" }
func (*sellCmd) Usage() string {
	return `taxlots sell [-p <portfolio>] [-d <date>] -s <symbol> [-q <quantity>] -price <price> [-commission <amount>] [-c <currency>] [-m <memo>]

  Records the sale of units of a symbol. Lots are consumed first-in first-out.
  A sale of more units than held is rejected.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, "Number of units, if missing all units held are sold")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(taxlots.Sell)
}
