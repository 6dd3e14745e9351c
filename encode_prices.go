package taxlots

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// jprice is a line of a prices file.
type jprice struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
}

// DecodePrices reads current prices from JSONL data, one
// {"symbol":..., "price":..., "currency":...} object per line.
func DecodePrices(r io.Reader) (map[string]Money, error) {
	prices := make(map[string]Money)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := bytes.TrimSpace(scanner.Bytes())
		if len(lineBytes) == 0 {
			continue
		}
		var jp jprice
		if err := json.Unmarshal(lineBytes, &jp); err != nil {
			return nil, fmt.Errorf("line %d: could not decode price %q: %w", line, string(lineBytes), err)
		}
		if jp.Symbol == "" {
			return nil, fmt.Errorf("line %d: price without symbol", line)
		}
		if jp.Price.IsNegative() {
			return nil, fmt.Errorf("line %d: negative price %s for %q", line, jp.Price, jp.Symbol)
		}
		if _, dup := prices[jp.Symbol]; dup {
			return nil, fmt.Errorf("line %d: price for %q is already defined", line, jp.Symbol)
		}
		prices[jp.Symbol] = M(jp.Price, jp.Currency)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading prices: %w", err)
	}
	return prices, nil
}

// EncodePrices writes prices as JSONL, sorted by symbol.
func EncodePrices(w io.Writer, prices map[string]Money) error {
	enc := json.NewEncoder(w)
	for _, symbol := range slices.Sorted(maps.Keys(prices)) {
		p := prices[symbol]
		if err := enc.Encode(jprice{Symbol: symbol, Price: p.Decimal(), Currency: p.Currency()}); err != nil {
			return fmt.Errorf("could not encode price of %q: %w", symbol, err)
		}
	}
	return nil
}
