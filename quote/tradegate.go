package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/etnz/taxlots"
	"github.com/rs/zerolog"
)

// TradegateURL is the refresh endpoint of the Tradegate exchange.
const TradegateURL = "https://www.tradegate.de/refresh.php"

// Tradegate gets the last price exchanged on Tradegate. Symbols are mapped to
// their ISIN, and prices are in EUR.
type Tradegate struct {
	BaseURL string            // BaseURL defaults to TradegateURL.
	ISIN    map[string]string // ISIN of each symbol.
	Client  *http.Client      // Client defaults to http.DefaultClient.
}

func (t *Tradegate) Latest(ctx context.Context, symbol string) (taxlots.Money, error) {
	isin, ok := t.ISIN[symbol]
	if !ok {
		return taxlots.Money{}, fmt.Errorf("%w %q: no ISIN", ErrUnknownSymbol, symbol)
	}
	base := t.BaseURL
	if base == "" {
		base = TradegateURL
	}
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	var jobj map[string]any
	if err := jwget(ctx, client, base+"?isin="+url.QueryEscape(isin), &jobj); err != nil {
		return taxlots.Money{}, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	// last is the last transaction, moves slower than the bid, but the bid can be 0.
	jval := jobj["last"]
	if s, ok := jval.(string); ok && s == "./." {
		// tradegate shows an empty last this way, use the bid instead
		zerolog.Ctx(ctx).Debug().Str("symbol", symbol).Msg("'last' is empty, falling back to 'bid'")
		jval = jobj["bid"]
	}
	if jval == nil {
		return taxlots.Money{}, fmt.Errorf("cannot read value of %q: no last nor bid price", symbol)
	}
	val, err := parseAmount(jval)
	if err != nil {
		return taxlots.Money{}, fmt.Errorf("cannot read value of %q: %w", symbol, err)
	}
	if val.IsZero() {
		// sometimes the bid is empty and returns 0
		return taxlots.Money{}, fmt.Errorf("cannot read value of %q: no price available", symbol)
	}
	return taxlots.M(val, "EUR"), nil
}
