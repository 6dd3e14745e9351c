package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/taxlots"
)

// JSONPath gets prices from any HTTP JSON endpoint. The "{symbol}" placeholder
// in URL is replaced by the symbol, and Path is evaluated on the response to
// find the price.
type JSONPath struct {
	URL      string // URL, e.g. "https://api.example.com/quote/{symbol}".
	Path     string // Path to the price, e.g. "$.data[-1:][1]".
	Currency string
	Client   *http.Client // Client defaults to http.DefaultClient.
}

func (j *JSONPath) Latest(ctx context.Context, symbol string) (taxlots.Money, error) {
	client := j.Client
	if client == nil {
		client = http.DefaultClient
	}
	addr := strings.ReplaceAll(j.URL, "{symbol}", url.PathEscape(symbol))

	var jobj any
	if err := jwget(ctx, client, addr, &jobj); err != nil {
		return taxlots.Money{}, fmt.Errorf("error in wget %q: %w", symbol, err)
	}
	jval, err := jsonpath.Get(j.Path, jobj)
	if err != nil {
		return taxlots.Money{}, fmt.Errorf("error parsing %q: %q %w", symbol, j.Path, err)
	}
	// jsonpath is never clear about whether it returns a list of 1 answer, or
	// a single answer: keep the first one if any.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return taxlots.Money{}, fmt.Errorf("error parsing %q: %q matches nothing", symbol, j.Path)
		}
		jval = jlist[0]
	}
	val, err := parseAmount(jval)
	if err != nil {
		return taxlots.Money{}, fmt.Errorf("error parsing %q: %q %w", symbol, j.Path, err)
	}
	return taxlots.M(val, j.Currency), nil
}
