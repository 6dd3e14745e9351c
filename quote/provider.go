// Package quote fetches the current price of symbols from market data
// providers.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/etnz/taxlots"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownSymbol is returned by a provider that has no source for a symbol.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Provider returns the latest price of a symbol.
type Provider interface {
	Latest(ctx context.Context, symbol string) (taxlots.Money, error)
}

// Static is a Provider over a fixed set of prices, usually read from a prices
// file.
type Static map[string]taxlots.Money

func (s Static) Latest(_ context.Context, symbol string) (taxlots.Money, error) {
	p, ok := s[symbol]
	if !ok {
		return taxlots.Money{}, fmt.Errorf("%w %q", ErrUnknownSymbol, symbol)
	}
	return p, nil
}

// FetchAll gets the latest price of every symbol, querying at most workers
// symbols at a time (no limit when workers <= 0).
func FetchAll(ctx context.Context, p Provider, symbols []string, workers int) (map[string]taxlots.Money, error) {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	var mu sync.Mutex
	prices := make(map[string]taxlots.Money, len(symbols))
	for _, symbol := range symbols {
		g.Go(func() error {
			price, err := p.Latest(ctx, symbol)
			if err != nil {
				return fmt.Errorf("cannot get the price of %q: %w", symbol, err)
			}
			mu.Lock()
			prices[symbol] = price
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prices, nil
}

// parseAmount reads a price out of a decoded JSON value. Some APIs return
// numbers as strings, with a comma as decimal separator.
func parseAmount(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		s := strings.ReplaceAll(x, ",", ".")
		s = strings.ReplaceAll(s, " ", "")
		return decimal.NewFromString(s)
	default:
		return decimal.Decimal{}, fmt.Errorf("neither a number nor a string: %v", v)
	}
}
