package taxlots

import (
	"github.com/google/uuid"
)

// LongTermThreshold is the holding period, in days, a lot must exceed for its
// gain to be long-term.
const LongTermThreshold = 365

// WashSaleWindow is the number of days, before and after a loss sale, during
// which a purchase of the same symbol makes it a wash sale.
const WashSaleWindow = 30

// ClassifyTerm returns the capital gains term of a realized gain: more than
// 365 days of holding is long-term, anything else (365 days included) is
// short-term.
func ClassifyTerm(g RealizedGain) Term {
	if g.HoldingDays() > LongTermThreshold {
		return LongTerm
	}
	return ShortTerm
}

// Classify sets the Term of every gain.
func Classify(gains []RealizedGain) {
	for i := range gains {
		gains[i].Term = ClassifyTerm(gains[i])
	}
}

// DetectWashSales flags the losses in gains that are wash sales against the
// buy transactions in txs, and sets the disallowed part of each loss.
//
// A buy of the same symbol dated within WashSaleWindow days (inclusive) before
// or after the loss sale provides replacement units, except the buys whose
// lots were consumed by that very sale. The disallowed amount is
// |Gain| * min(Quantity, replacement)/Quantity. A replacement unit covers a
// single sold unit: losses take replacement units in order, from the buys in
// the order of txs. Gains are never flagged.
func DetectWashSales(gains []RealizedGain, txs []Transaction) {
	// remaining replacement capacity per buy, by index in txs.
	capacity := make(map[int]Quantity)

	for i := range gains {
		g := &gains[i]
		if !g.IsLoss() {
			continue
		}
		sold := soldLots(gains, *g)

		var replaced Quantity
		for j, tx := range txs {
			if replaced.Equal(g.Quantity) {
				break
			}
			if tx.Type != Buy || tx.Symbol != g.Symbol {
				continue
			}
			if _, same := sold[buyKey(tx)]; same {
				continue
			}
			if d := g.Sold.DaysUntil(tx.Date); d < -WashSaleWindow || d > WashSaleWindow {
				continue
			}
			left, seen := capacity[j]
			if !seen {
				left = tx.Quantity
			}
			take := left.Min(g.Quantity.Sub(replaced))
			if !take.IsPositive() {
				continue
			}
			capacity[j] = left.Sub(take)
			replaced = replaced.Add(take)
		}

		if replaced.IsPositive() {
			g.WashSale = true
			g.Disallowed = g.Gain.Abs().Mul(replaced).Div(g.Quantity)
		}
	}
}

// lotKey identifies the buy that opened a lot: its ID, or its date and unit
// cost when the buy has no ID.
type lotKey struct {
	id       uuid.UUID
	acquired Date
	unitCost string
}

func buyKey(tx Transaction) lotKey {
	if tx.ID != uuid.Nil {
		return lotKey{id: tx.ID}
	}
	return lotKey{acquired: tx.Date, unitCost: tx.unitCost().Decimal().String()}
}

func (g RealizedGain) lotKey() lotKey {
	if g.LotID != uuid.Nil {
		return lotKey{id: g.LotID}
	}
	return lotKey{acquired: g.Acquired, unitCost: g.UnitCost.Decimal().String()}
}

// soldLots returns the lots consumed by the sale that realized g. Gains
// without SaleID belong to the sales of the same symbol on the same day.
func soldLots(gains []RealizedGain, g RealizedGain) map[lotKey]struct{} {
	keys := make(map[lotKey]struct{})
	for _, o := range gains {
		same := o.SaleID == g.SaleID
		if g.SaleID == uuid.Nil {
			same = o.SaleID == uuid.Nil && o.Symbol == g.Symbol && o.Sold == g.Sold
		}
		if same {
			keys[o.lotKey()] = struct{}{}
		}
	}
	return keys
}

// GainsReport sums up the realized gains of a tax year.
type GainsReport struct {
	Year       int // Year is 0 for a report over all years.
	Gains      []RealizedGain
	Realized   Money // Realized is the sum of the gains as computed from lots.
	Disallowed Money // Disallowed is the sum of the wash-sale losses added back.
	ShortTerm  Money // ShortTerm is the recognized short-term gain.
	LongTerm   Money // LongTerm is the recognized long-term gain.
	WashSales  int
}

// NewGainsReport selects the gains sold during year (all of them when year is
// 0) and sums them up.
func NewGainsReport(gains []RealizedGain, year int) *GainsReport {
	r := &GainsReport{Year: year}
	for _, g := range gains {
		if year != 0 && g.Sold.Year() != year {
			continue
		}
		r.Gains = append(r.Gains, g)
		r.Realized = r.Realized.Add(g.Gain)
		r.Disallowed = r.Disallowed.Add(g.Disallowed)
		if g.WashSale {
			r.WashSales++
		}
		switch g.Term {
		case LongTerm:
			r.LongTerm = r.LongTerm.Add(g.Recognized())
		default:
			r.ShortTerm = r.ShortTerm.Add(g.Recognized())
		}
	}
	return r
}

// Recognized returns the total gain to report.
func (r *GainsReport) Recognized() Money { return r.ShortTerm.Add(r.LongTerm) }
