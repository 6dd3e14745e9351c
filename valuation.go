package taxlots

import (
	"maps"
	"slices"
)

// Position is the valuation of the open lots of one symbol.
type Position struct {
	Symbol        string
	Quantity      Quantity
	CostBasis     Money // CostBasis is the sum of the open lots cost.
	AverageCost   Money // AverageCost is CostBasis / Quantity.
	Price         Money
	MarketValue   Money
	Return        Money // Return is the unrealized gain, MarketValue - CostBasis.
	ReturnPercent Percent
}

// Summary is the valuation of a whole portfolio.
type Summary struct {
	Positions     []Position // sorted by symbol
	TotalCost     Money
	TotalValue    Money
	TotalReturn   Money
	ReturnPercent Percent // ReturnPercent is 0 when TotalCost is 0.
}

// Position returns the position of symbol in the summary.
func (s *Summary) Position(symbol string) (Position, bool) {
	i, found := slices.BinarySearchFunc(s.Positions, symbol, func(p Position, symbol string) int {
		switch {
		case p.Symbol < symbol:
			return -1
		case p.Symbol > symbol:
			return 1
		}
		return 0
	})
	if !found {
		return Position{}, false
	}
	return s.Positions[i], true
}

// Valuate computes the positions and totals of a portfolio from its open lots
// and the current price of each symbol.
//
// Every symbol with open quantity must have a price: a missing one is reported
// as a *MissingPriceError, never valued at 0. All the lots and prices must be
// in a single currency, otherwise a *CurrencyMismatchError is returned.
func Valuate(openLots map[string][]Lot, prices map[string]Money) (*Summary, error) {
	s := &Summary{}
	for _, symbol := range slices.Sorted(maps.Keys(openLots)) {
		var quantity Quantity
		var cost Money
		for _, l := range openLots[symbol] {
			if !cost.SameCurrency(l.Cost()) {
				return nil, &CurrencyMismatchError{Symbol: symbol, Want: cost.Currency(), Got: l.Cost().Currency()}
			}
			quantity = quantity.Add(l.Quantity)
			cost = cost.Add(l.Cost())
		}
		if quantity.IsZero() {
			continue
		}
		price, ok := prices[symbol]
		if !ok {
			return nil, &MissingPriceError{Symbol: symbol}
		}
		if !price.SameCurrency(cost) {
			return nil, &CurrencyMismatchError{Symbol: symbol, Want: cost.Currency(), Got: price.Currency()}
		}
		if !s.TotalCost.SameCurrency(cost) || !s.TotalValue.SameCurrency(price) {
			return nil, &CurrencyMismatchError{Symbol: symbol, Want: s.TotalCost.Currency(), Got: cost.Currency()}
		}

		value := price.Mul(quantity)
		ret := value.Sub(cost)
		s.Positions = append(s.Positions, Position{
			Symbol:        symbol,
			Quantity:      quantity,
			CostBasis:     cost,
			AverageCost:   cost.Div(quantity),
			Price:         price,
			MarketValue:   value,
			Return:        ret,
			ReturnPercent: percentOf(ret.Decimal(), cost.Decimal()),
		})
		s.TotalCost = s.TotalCost.Add(cost)
		s.TotalValue = s.TotalValue.Add(value)
	}
	s.TotalReturn = s.TotalValue.Sub(s.TotalCost)
	s.ReturnPercent = percentOf(s.TotalReturn.Decimal(), s.TotalCost.Decimal())
	return s, nil
}

// Allocation returns the weight of each position in the total market value,
// in percent. The weights sum to 100 (within rounding). The map is empty when
// the total value is 0.
func Allocation(s *Summary) map[string]Percent {
	weights := make(map[string]Percent, len(s.Positions))
	if s.TotalValue.IsZero() {
		return weights
	}
	for _, p := range s.Positions {
		weights[p.Symbol] = percentOf(p.MarketValue.Decimal(), s.TotalValue.Decimal())
	}
	return weights
}
