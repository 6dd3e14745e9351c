package taxlots

import (
	"fmt"
	"iter"
	"slices"
	"sort"

	"github.com/google/uuid"
)

// Ledger represents a list of transactions.
//
// In a Ledger transactions are always in chronological order. Transactions
// on the same day keep the order in which they were appended.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{transactions: make([]Transaction, 0)}
}

// Append adds transactions to the ledger. A transaction without ID is given a
// new one.
func (l *Ledger) Append(txs ...Transaction) {
	for _, tx := range txs {
		if tx.ID == uuid.Nil {
			tx.ID = uuid.New()
		}
		l.transactions = append(l.transactions, tx)
	}
	l.stableSort()
}

// stableSort sorts the transactions by date, preserving the original order of
// transactions that occur on the same day.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns an iterator over the transactions in chronological order.
func (l *Ledger) Transactions() iter.Seq[Transaction] {
	return slices.Values(l.transactions)
}

// Symbols returns the symbols traded in the ledger, sorted.
func (l *Ledger) Symbols() []string {
	seen := make(map[string]struct{})
	for _, tx := range l.transactions {
		seen[tx.Symbol] = struct{}{}
	}
	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	return symbols
}

// Position returns the quantity of symbol held at the end of day on, as
// replayed from the ledger.
func (l *Ledger) Position(symbol string, on Date) (Quantity, error) {
	tracker, err := l.replay(symbol, on)
	if err != nil {
		return Quantity{}, err
	}
	return tracker.Available(symbol), nil
}

// replay applies the transactions of symbol dated on or before on to a new
// Tracker.
func (l *Ledger) replay(symbol string, on Date) (*Tracker, error) {
	tracker := NewTracker()
	for _, tx := range l.transactions {
		if tx.Date.After(on) {
			break
		}
		if tx.Symbol != symbol {
			continue
		}
		if _, err := tracker.Apply(tx); err != nil {
			return nil, err
		}
	}
	return tracker, nil
}

// Validate checks a transaction before it is appended to the ledger and
// applies quick fixes where applicable. It returns the validated (and
// potentially modified) transaction.
//
// A sell with a zero quantity is a "sell all" instruction and is resolved to
// the position held on the transaction date. A sell of more than the position
// is an *InsufficientLotsError. A price in another currency than the open lots
// of the symbol is an *InvalidTransactionError.
func (l *Ledger) Validate(tx Transaction) (Transaction, error) {
	if tx.Date.IsZero() {
		tx.Date = Today()
	}

	tracker, err := l.replay(tx.Symbol, tx.Date)
	if err != nil {
		return tx, fmt.Errorf("cannot replay %q up to %s: %w", tx.Symbol, tx.Date, err)
	}
	position := tracker.Available(tx.Symbol)
	if tx.Type == Sell && tx.Quantity.IsZero() {
		tx.Quantity = position
	}
	if err := tx.Validate(); err != nil {
		return tx, err
	}
	if lots := tracker.OpenLots(tx.Symbol); len(lots) > 0 && !lots[0].UnitCost.SameCurrency(tx.Price) {
		return tx, invalid(tx.Symbol, tx.Date, "%s price in %s, but lots are held in %s", tx.Type, tx.Currency(), lots[0].UnitCost.Currency())
	}
	if tx.Type == Sell && position.LessThan(tx.Quantity) {
		return tx, &InsufficientLotsError{Symbol: tx.Symbol, Date: tx.Date, Requested: tx.Quantity, Available: position}
	}
	return tx, nil
}
