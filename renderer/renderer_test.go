package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/taxlots"
)

func usd(v float64) taxlots.Money { return taxlots.M(v, "USD") }

func sampleBook(t *testing.T) *taxlots.Book {
	t.Helper()
	ledger := taxlots.NewLedger()
	ledger.Append(
		taxlots.NewBuy(taxlots.NewDate(2022, time.January, 3), "VT", taxlots.Q(100), usd(100)),
		taxlots.NewBuy(taxlots.NewDate(2023, time.May, 20), "VT", taxlots.Q(50), usd(85)),
		taxlots.NewSell(taxlots.NewDate(2023, time.June, 1), "VT", taxlots.Q(100), usd(80)),
		taxlots.NewBuy(taxlots.NewDate(2023, time.June, 2), "AAPL", taxlots.Q(10), usd(150)),
	)
	book, err := taxlots.Reconcile(ledger)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	return book
}

// assertContains checks that every want string appears in got.
func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func TestLotsMarkdown(t *testing.T) {
	book := sampleBook(t)
	got := LotsMarkdown(book.Tracker, taxlots.NewDate(2023, time.July, 1))

	assertContains(t, got,
		"# Open Lots on 2023-07-01",
		"## AAPL",
		"## VT",
		"2023-05-20",
		"$1,500.00",
		"**Total**",
		"short",
	)
	if strings.Index(got, "## AAPL") > strings.Index(got, "## VT") {
		t.Errorf("symbols are not sorted:\n%s", got)
	}
}

func TestLotsMarkdown_Empty(t *testing.T) {
	got := LotsMarkdown(taxlots.NewTracker(), taxlots.NewDate(2023, time.July, 1))
	assertContains(t, got, "No open lot.")
}

func TestGainsMarkdown(t *testing.T) {
	book := sampleBook(t)
	got := GainsMarkdown(book.GainsReport(2023))

	assertContains(t, got,
		"# Capital Gains Report for 2023",
		"| VT | 2022-01-03 | 2023-06-01 | 100 |",
		"-$2,000.00",
		"| long | W |",
		"## Wash Sales",
		"$1,000.00",
		"**-$1,000.00**",
	)
}

func TestGainsMarkdown_NoWashSale(t *testing.T) {
	gains := []taxlots.RealizedGain{{
		Symbol:    "AAPL",
		Quantity:  taxlots.Q(1),
		Acquired:  taxlots.NewDate(2023, time.January, 2),
		Sold:      taxlots.NewDate(2023, time.March, 2),
		UnitCost:  usd(100),
		SalePrice: usd(110),
		CostBasis: usd(100),
		Proceeds:  usd(110),
		Gain:      usd(10),
	}}
	got := GainsMarkdown(taxlots.NewGainsReport(gains, 0))

	assertContains(t, got, "# Capital Gains Report\n", "+$10.00")
	if strings.Contains(got, "Wash Sales") {
		t.Errorf("wash sales section printed without wash sale:\n%s", got)
	}
}

func TestHoldingMarkdown(t *testing.T) {
	book := sampleBook(t)
	s, err := book.Valuate(map[string]taxlots.Money{"VT": usd(90), "AAPL": usd(150)})
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	got := HoldingMarkdown(s, taxlots.NewDate(2023, time.July, 1))

	// 50 VT at 90 and 10 AAPL at 150
	assertContains(t, got,
		"# Holding on 2023-07-01",
		"$6,000.00",
		"## Positions",
		"| VT",
		"$4,500.00",
		"75.00%",
		"25.00%",
	)
}

func TestTransaction(t *testing.T) {
	tx := taxlots.NewSell(taxlots.NewDate(2023, time.June, 1), "VT", taxlots.Q(100), usd(80)).WithCommission(usd(5))
	want := "Sold 100 of VT at $80.00 on 2023-06-01 (commission $5.00)"
	if got := Transaction(tx); got != want {
		t.Errorf("Transaction() = %q, want %q", got, want)
	}
}
