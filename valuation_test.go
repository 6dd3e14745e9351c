package taxlots

import (
	"errors"
	"testing"
	"time"
)

func TestValuate_Empty(t *testing.T) {
	s, err := Valuate(map[string][]Lot{}, map[string]Money{})
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	if len(s.Positions) != 0 {
		t.Errorf("Positions = %v, want none", s.Positions)
	}
	if !s.TotalCost.IsZero() || !s.TotalValue.IsZero() || !s.TotalReturn.IsZero() || s.ReturnPercent != 0 {
		t.Errorf("empty summary has non zero totals: %+v", s)
	}
	if a := Allocation(s); len(a) != 0 {
		t.Errorf("Allocation() = %v, want an empty map", a)
	}
}

func TestValuate(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordBuy("AAPL", Q(100), USD(100), day(time.January, 15))
	tracker.RecordBuy("AAPL", Q(50), USD(120), day(time.March, 10))
	tracker.RecordBuy("MSFT", Q(10), USD(300), day(time.March, 10))
	prices := map[string]Money{
		"AAPL": USD(150),
		"MSFT": USD(270),
		"TSLA": USD(900), // a price without position is ignored
	}

	s, err := Valuate(tracker.OpenLotsBySymbol(), prices)
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	if len(s.Positions) != 2 {
		t.Fatalf("Valuate() has %d positions, want 2", len(s.Positions))
	}

	aapl, ok := s.Position("AAPL")
	if !ok {
		t.Fatalf("no AAPL position")
	}
	checks := []struct {
		name      string
		got, want Money
	}{
		{"AAPL cost basis", aapl.CostBasis, USD(16000)},
		{"AAPL market value", aapl.MarketValue, USD(22500)},
		{"AAPL return", aapl.Return, USD(6500)},
		{"AAPL average cost", aapl.AverageCost, USD(16000).Div(Q(150))},
		{"total cost", s.TotalCost, USD(19000)},
		{"total value", s.TotalValue, USD(25200)},
		{"total return", s.TotalReturn, USD(6200)},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s = %s, want %s", c.name, c.got.Decimal(), c.want.Decimal())
		}
	}
	if !near(aapl.ReturnPercent, 40.625, 0.0001) {
		t.Errorf("AAPL return = %s, want 40.63%%", aapl.ReturnPercent)
	}
	msft, _ := s.Position("MSFT")
	if !near(msft.ReturnPercent, -10, 0.0001) {
		t.Errorf("MSFT return = %s, want -10%%", msft.ReturnPercent)
	}
	if _, ok := s.Position("TSLA"); ok {
		t.Errorf("TSLA has a position without any lot")
	}
}

func TestValuate_MissingPrice(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordBuy("AAPL", Q(1), USD(100), day(time.January, 15))
	tracker.RecordBuy("GOOG", Q(1), USD(100), day(time.January, 15))

	_, err := Valuate(tracker.OpenLotsBySymbol(), map[string]Money{"AAPL": USD(1)})

	var missing *MissingPriceError
	if !errors.As(err, &missing) {
		t.Fatalf("Valuate() error = %v, want a *MissingPriceError", err)
	}
	if missing.Symbol != "GOOG" {
		t.Errorf("missing price symbol = %q, want GOOG", missing.Symbol)
	}
	if !errors.Is(err, ErrMissingPrice) {
		t.Errorf("error does not match ErrMissingPrice")
	}
}

func TestAllocation(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordBuy("A", Q(100), USD(100), day(time.January, 3))
	tracker.RecordBuy("B", Q(500), USD(200), day(time.January, 3))
	tracker.RecordBuy("C", Q(200), USD(100), day(time.January, 3))
	prices := map[string]Money{"A": USD(155), "B": USD(255), "C": USD(120)}

	s, err := Valuate(tracker.OpenLotsBySymbol(), prices)
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	// market values 15500, 127500 and 24000
	want := map[string]Percent{"A": 9.28, "B": 76.35, "C": 14.37}

	got := Allocation(s)
	var sum Percent
	for symbol, w := range want {
		if !near(got[symbol], w, 0.01) {
			t.Errorf("Allocation()[%s] = %s, want %s", symbol, got[symbol], w)
		}
		sum += got[symbol]
	}
	if len(got) != len(want) {
		t.Errorf("Allocation() = %v, want %d symbols", got, len(want))
	}
	if !near(sum, 100, 0.1) {
		t.Errorf("allocation sums to %s, want 100%%", sum)
	}
}

func TestValuate_CurrencyMismatch(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordBuy("AAPL", Q(10), USD(100), day(time.January, 15))
	tracker.RecordBuy("SAP", Q(10), M(100, "EUR"), day(time.January, 15))

	testCases := []struct {
		name   string
		lots   map[string][]Lot
		prices map[string]Money
	}{
		{"positions in two currencies", tracker.OpenLotsBySymbol(), map[string]Money{"AAPL": USD(110), "SAP": M(120, "EUR")}},
		{"price in another currency", map[string][]Lot{"AAPL": tracker.OpenLots("AAPL")}, map[string]Money{"AAPL": M(110, "EUR")}},
		{"lots in two currencies", map[string][]Lot{"AAPL": append(tracker.OpenLots("AAPL"), tracker.OpenLots("SAP")...)}, map[string]Money{"AAPL": USD(110)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Valuate(tc.lots, tc.prices)
			var mismatch *CurrencyMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("Valuate() error = %v, want a *CurrencyMismatchError", err)
			}
			if !errors.Is(err, ErrCurrencyMismatch) {
				t.Errorf("Valuate() error = %v, want ErrCurrencyMismatch", err)
			}
		})
	}

	// a single currency, other than USD, is fine.
	s, err := Valuate(map[string][]Lot{"SAP": tracker.OpenLots("SAP")}, map[string]Money{"SAP": M(120, "EUR")})
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	if !s.TotalValue.Equal(M(1200, "EUR")) {
		t.Errorf("TotalValue = %s, want 1200 EUR", s.TotalValue.Decimal())
	}
}
