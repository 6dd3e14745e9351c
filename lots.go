package taxlots

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Lot represents a single purchase of a security that is still (at least
// partially) held, used for cost basis calculations.
type Lot struct {
	ID       uuid.UUID
	Symbol   string
	Quantity Quantity
	UnitCost Money
	Acquired Date

	// Basis is the total cost of the lot, commission included. When zero the
	// cost is UnitCost * Quantity.
	Basis Money
}

// Cost returns the total cost of the lot.
func (l Lot) Cost() Money {
	if !l.Basis.IsZero() {
		return l.Basis
	}
	return l.UnitCost.Mul(l.Quantity)
}

// lotQueue is a double-ended queue of lots, oldest at the front.
//
// Lots are popped from the front far more often than the backing array needs
// to grow, so the head index moves and the array is compacted lazily.
type lotQueue struct {
	lots []Lot
	head int
}

func (q *lotQueue) len() int { return len(q.lots) - q.head }

func (q *lotQueue) pushBack(l Lot) {
	if q.head > 0 && q.head >= len(q.lots)/2 {
		n := copy(q.lots, q.lots[q.head:])
		clear(q.lots[n:])
		q.lots = q.lots[:n]
		q.head = 0
	}
	q.lots = append(q.lots, l)
}

// front returns a pointer to the oldest lot. The queue must not be empty.
func (q *lotQueue) front() *Lot { return &q.lots[q.head] }

func (q *lotQueue) popFront() Lot {
	l := q.lots[q.head]
	q.lots[q.head] = Lot{}
	q.head++
	if q.head == len(q.lots) {
		q.lots = q.lots[:0]
		q.head = 0
	}
	return l
}

// total returns the sum of the quantities of all lots.
func (q *lotQueue) total() Quantity {
	var sum Quantity
	for _, l := range q.lots[q.head:] {
		sum = sum.Add(l.Quantity)
	}
	return sum
}

// currency returns the unit cost of the oldest lot, the currency shared by all
// the lots of the queue. The queue must not be empty.
func (q *lotQueue) currency() Money { return q.front().UnitCost }

// clone returns a copy of the lots, oldest first.
func (q *lotQueue) clone() []Lot {
	return slices.Clone(q.lots[q.head:])
}

// Tracker maintains the open lots of a portfolio, one FIFO queue per symbol.
//
// A Tracker is not safe for concurrent use. Use one Tracker per portfolio:
// trackers share no state, so distinct portfolios can be processed in parallel.
type Tracker struct {
	queues map[string]*lotQueue
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{queues: make(map[string]*lotQueue)}
}

// RecordBuy appends a new lot at the tail of the symbol's queue.
//
// All the lots of a symbol share the same currency: a unit cost in another
// currency is an *InvalidTransactionError.
func (t *Tracker) RecordBuy(symbol string, quantity Quantity, unitCost Money, on Date) (Lot, error) {
	return t.recordBuy(uuid.New(), symbol, quantity, unitCost, unitCost.Mul(quantity), on)
}

func (t *Tracker) recordBuy(id uuid.UUID, symbol string, quantity Quantity, unitCost, basis Money, on Date) (Lot, error) {
	switch {
	case symbol == "":
		return Lot{}, invalid(symbol, on, "symbol is missing")
	case on.IsZero():
		return Lot{}, invalid(symbol, on, "date is missing")
	case !quantity.IsPositive():
		return Lot{}, invalid(symbol, on, "buy quantity must be positive, got %s", quantity)
	case unitCost.IsNegative():
		return Lot{}, invalid(symbol, on, "unit cost must not be negative, got %s", unitCost.Decimal())
	}

	q, ok := t.queues[symbol]
	if !ok {
		q = &lotQueue{}
		t.queues[symbol] = q
	}
	if q.len() > 0 && !q.currency().SameCurrency(unitCost) {
		return Lot{}, invalid(symbol, on, "cost in %s, but lots are held in %s", unitCost.Currency(), q.currency().Currency())
	}
	l := Lot{ID: id, Symbol: symbol, Quantity: quantity, UnitCost: unitCost, Acquired: on, Basis: basis}
	q.pushBack(l)
	return l, nil
}

// RecordSell consumes quantity units from the oldest lots of symbol and
// returns one RealizedGain per lot consumed, oldest first. The last lot
// touched is split when only part of it is sold; the remainder keeps its
// unit cost, acquisition date and ID.
//
// RecordSell is atomic: when the open lots do not hold enough units it
// returns an *InsufficientLotsError and leaves the queue untouched. A sale
// price in another currency than the lots is an *InvalidTransactionError.
func (t *Tracker) RecordSell(symbol string, quantity Quantity, salePrice Money, on Date) ([]RealizedGain, error) {
	if salePrice.IsNegative() {
		return nil, invalid(symbol, on, "sale price must not be negative, got %s", salePrice.Decimal())
	}
	return t.recordSell(uuid.New(), symbol, quantity, salePrice.Mul(quantity), on)
}

// recordSell sells quantity units for the net amount proceeds. Cost and
// proceeds are split across the lots consumed so that the parts add up to the
// totals exactly.
func (t *Tracker) recordSell(saleID uuid.UUID, symbol string, quantity Quantity, proceeds Money, on Date) ([]RealizedGain, error) {
	switch {
	case symbol == "":
		return nil, invalid(symbol, on, "symbol is missing")
	case on.IsZero():
		return nil, invalid(symbol, on, "date is missing")
	case !quantity.IsPositive():
		return nil, invalid(symbol, on, "sell quantity must be positive, got %s", quantity)
	case proceeds.IsNegative():
		return nil, invalid(symbol, on, "net proceeds must not be negative, got %s", proceeds.Decimal())
	}

	q := t.queues[symbol]
	var available Quantity
	if q != nil {
		available = q.total()
	}
	if available.LessThan(quantity) {
		return nil, &InsufficientLotsError{Symbol: symbol, Date: on, Requested: quantity, Available: available}
	}
	if !q.currency().SameCurrency(proceeds) {
		return nil, invalid(symbol, on, "sale price in %s, but lots are held in %s", proceeds.Currency(), q.currency().Currency())
	}

	salePrice := proceeds.Div(quantity)
	var gains []RealizedGain
	remaining, unallocated := quantity, proceeds
	for remaining.IsPositive() {
		oldest := q.front()
		sold := oldest.Quantity.Min(remaining)

		cost, part := oldest.Cost(), unallocated
		if !sold.Equal(oldest.Quantity) {
			cost = cost.Mul(sold).Div(oldest.Quantity)
		}
		if !sold.Equal(remaining) {
			part = proceeds.Mul(sold).Div(quantity)
		}
		gains = append(gains, newRealizedGain(saleID, *oldest, sold, salePrice, part, cost, on))

		if sold.Equal(oldest.Quantity) {
			q.popFront()
		} else {
			oldest.Basis = oldest.Cost().Sub(cost)
			oldest.Quantity = oldest.Quantity.Sub(sold)
		}
		remaining = remaining.Sub(sold)
		unallocated = unallocated.Sub(part)
	}
	if q.len() == 0 {
		delete(t.queues, symbol)
	}
	return gains, nil
}

// Apply records a validated transaction.
//
// A buy commission is part of the cost basis: the lot costs
// quantity*price + commission. A sell commission reduces the proceeds to
// quantity*price - commission.
//
// The lot opened by a buy takes the transaction ID, and so do the gains of a
// sell. A sell without ID is given a new one.
func (t *Tracker) Apply(tx Transaction) ([]RealizedGain, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	switch tx.Type {
	case Buy:
		_, err := t.recordBuy(tx.ID, tx.Symbol, tx.Quantity, tx.unitCost(), tx.Amount().Add(tx.Commission), tx.Date)
		return nil, err
	default:
		saleID := tx.ID
		if saleID == uuid.Nil {
			saleID = uuid.New()
		}
		return t.recordSell(saleID, tx.Symbol, tx.Quantity, tx.Amount().Sub(tx.Commission), tx.Date)
	}
}

// OpenLots returns a snapshot of the open lots of symbol, oldest first.
func (t *Tracker) OpenLots(symbol string) []Lot {
	q, ok := t.queues[symbol]
	if !ok {
		return nil
	}
	return q.clone()
}

// OpenLotsBySymbol returns a snapshot of all the open lots indexed by symbol.
func (t *Tracker) OpenLotsBySymbol() map[string][]Lot {
	all := make(map[string][]Lot, len(t.queues))
	for symbol, q := range t.queues {
		all[symbol] = q.clone()
	}
	return all
}

// Available returns the quantity of symbol held in open lots.
func (t *Tracker) Available(symbol string) Quantity {
	q, ok := t.queues[symbol]
	if !ok {
		return Quantity{}
	}
	return q.total()
}

// Symbols returns the symbols with open lots, sorted.
func (t *Tracker) Symbols() []string {
	return slices.Sorted(maps.Keys(t.queues))
}
