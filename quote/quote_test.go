package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/taxlots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tradegateServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Query().Get("isin")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTradegate_Latest(t *testing.T) {
	srv := tradegateServer(t, map[string]string{
		"US0378331005": `{"last": 201.35, "bid": 201.1}`,
		"DE0007164600": `{"last": "./.", "bid": "120,45"}`,
		"IE00B4L5Y983": `{"last": " 1 234,5 "}`,
		"XX0000000000": `{"bid": 1}`,
		"NL0010273215": `{"last": "./.", "bid": "0"}`,
		"FR0000120271": `{"last": 0}`,
	})
	tg := &Tradegate{
		BaseURL: srv.URL,
		ISIN: map[string]string{
			"AAPL": "US0378331005",
			"SAP":  "DE0007164600",
			"IWDA": "IE00B4L5Y983",
			"XX":   "XX0000000000",
			"ASML": "NL0010273215",
			"TTE":  "FR0000120271",
			"404":  "FR0000000000",
		},
	}

	testCases := []struct {
		symbol  string
		want    string
		wantErr bool
	}{
		{symbol: "AAPL", want: "201.35"},
		{symbol: "SAP", want: "120.45"},
		{symbol: "IWDA", want: "1234.5"},
		{symbol: "XX", wantErr: true},
		{symbol: "ASML", wantErr: true}, // an empty bid is 0
		{symbol: "TTE", wantErr: true},
		{symbol: "404", wantErr: true},
		{symbol: "MSFT", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.symbol, func(t *testing.T) {
			got, err := tg.Latest(context.Background(), tc.symbol)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Decimal().String())
			assert.Equal(t, "EUR", got.Currency())
		})
	}

	_, err := tg.Latest(context.Background(), "MSFT")
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
}

func TestJSONPath_Latest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/VT", r.URL.Path)
		fmt.Fprint(w, `{"series":{"data":[[1,101.5],[2,102.25]]}}`)
	}))
	defer srv.Close()

	p := &JSONPath{URL: srv.URL + "/quote/{symbol}", Path: "$.series.data[-1:][1]", Currency: "USD"}
	got, err := p.Latest(context.Background(), "VT")
	require.NoError(t, err)
	assert.True(t, got.Equal(taxlots.M(102.25, "USD")), "got %s", got)

	p.Path = "$.series.nothing"
	_, err = p.Latest(context.Background(), "VT")
	assert.Error(t, err)
}

func TestStatic_Latest(t *testing.T) {
	s := Static{"AAPL": taxlots.M(150, "USD")}

	got, err := s.Latest(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, got.Equal(taxlots.M(150, "USD")))

	_, err = s.Latest(context.Background(), "GOOG")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestFetchAll(t *testing.T) {
	s := Static{
		"A": taxlots.M(1, "USD"),
		"B": taxlots.M(2, "USD"),
		"C": taxlots.M(3, "USD"),
	}

	prices, err := FetchAll(context.Background(), s, []string{"A", "B", "C"}, 2)
	require.NoError(t, err)
	assert.Len(t, prices, 3)
	assert.True(t, prices["C"].Equal(taxlots.M(3, "USD")))

	_, err = FetchAll(context.Background(), s, []string{"A", "Z"}, 0)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
	assert.Contains(t, err.Error(), `"Z"`)
}

func TestDaily_CachesResponses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"last": 10}`)
	}))
	defer srv.Close()

	tg := &Tradegate{BaseURL: srv.URL, ISIN: map[string]string{"X": "X1"}, Client: Daily(t.TempDir())}
	for range 3 {
		got, err := tg.Latest(context.Background(), "X")
		require.NoError(t, err)
		assert.Equal(t, "10", got.Decimal().String())
	}
	assert.Equal(t, int32(1), hits.Load())
}
