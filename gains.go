package taxlots

import (
	"github.com/google/uuid"
)

// RealizedGain is the gain or loss locked in when a sale consumes (part of) a
// lot. A sale spanning several lots produces one RealizedGain per lot.
type RealizedGain struct {
	LotID     uuid.UUID
	SaleID    uuid.UUID // SaleID is shared by the gains of a single sale.
	Symbol    string
	Quantity  Quantity // Quantity consumed from the lot.
	Acquired  Date
	Sold      Date
	UnitCost  Money
	SalePrice Money // SalePrice is the net unit price, commission deducted.
	CostBasis Money // CostBasis is the cost of the units sold.
	Proceeds  Money // Proceeds is the net amount received for the units sold.
	Gain      Money // Gain is Proceeds - CostBasis, negative for a loss.
	Term      Term

	// WashSale and Disallowed are set by DetectWashSales.
	WashSale   bool
	Disallowed Money // Disallowed is the part of the loss that cannot be deducted.
}

func newRealizedGain(saleID uuid.UUID, l Lot, quantity Quantity, salePrice, proceeds, cost Money, on Date) RealizedGain {
	g := RealizedGain{
		LotID:     l.ID,
		SaleID:    saleID,
		Symbol:    l.Symbol,
		Quantity:  quantity,
		Acquired:  l.Acquired,
		Sold:      on,
		UnitCost:  l.UnitCost,
		SalePrice: salePrice,
		CostBasis: cost,
		Proceeds:  proceeds,
		Gain:      proceeds.Sub(cost),
	}
	g.Term = ClassifyTerm(g)
	return g
}

// HoldingDays returns the number of days the lot was held.
func (g RealizedGain) HoldingDays() int { return g.Acquired.DaysUntil(g.Sold) }

// IsLoss reports whether the sale realized a loss.
func (g RealizedGain) IsLoss() bool { return g.Gain.IsNegative() }

// Recognized returns the gain as reported for tax: the disallowed part of a
// wash-sale loss is added back.
func (g RealizedGain) Recognized() Money { return g.Gain.Add(g.Disallowed) }
