package taxlots

import (
	"fmt"
	"slices"
)

// Book is the result of replaying a ledger: the lots still open and the
// realized gains, classified and checked for wash sales.
type Book struct {
	Tracker *Tracker
	Gains   []RealizedGain
}

// Reconcile replays every transaction of the ledger, in order, into a new
// Tracker. Realized gains are classified by term and checked for wash sales
// against all the buys of the ledger.
//
// The first transaction that cannot be applied aborts the replay.
func Reconcile(l *Ledger) (*Book, error) {
	book := &Book{Tracker: NewTracker()}
	for tx := range l.Transactions() {
		gains, err := book.Tracker.Apply(tx)
		if err != nil {
			return nil, fmt.Errorf("cannot apply %s of %s %q on %s: %w", tx.Type, tx.Quantity, tx.Symbol, tx.Date, err)
		}
		book.Gains = append(book.Gains, gains...)
	}
	Classify(book.Gains)
	DetectWashSales(book.Gains, slices.Collect(l.Transactions()))
	return book, nil
}

// Valuate values the open lots of the book at the given prices.
func (b *Book) Valuate(prices map[string]Money) (*Summary, error) {
	return Valuate(b.Tracker.OpenLotsBySymbol(), prices)
}

// GainsReport returns the realized gains of the given year, or of all years
// when year is 0.
func (b *Book) GainsReport(year int) *GainsReport {
	return NewGainsReport(b.Gains, year)
}
