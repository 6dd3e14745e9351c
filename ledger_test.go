package taxlots

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLedger_Append(t *testing.T) {
	ledger := NewLedger()
	// deliberately unsorted, tx2 and tx3 are on the same day.
	tx1 := NewBuy(day(time.August, 3), "AAPL", Q(1), USD(1)).WithMemo("1")
	tx2 := NewBuy(day(time.August, 1), "GOOG", Q(1), USD(1)).WithMemo("2")
	tx3 := NewSell(day(time.August, 1), "GOOG", Q(1), USD(1)).WithMemo("3")
	ledger.Append(tx1, tx2, tx3)

	var memos []string
	for tx := range ledger.Transactions() {
		memos = append(memos, tx.Memo)
		if tx.ID == uuid.Nil {
			t.Errorf("transaction %q has no ID after Append", tx.Memo)
		}
	}
	if want := []string{"2", "3", "1"}; !slices.Equal(memos, want) {
		t.Errorf("transactions order = %v, want %v", memos, want)
	}
	if ledger.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ledger.Len())
	}
	if got, want := ledger.Symbols(), []string{"AAPL", "GOOG"}; !slices.Equal(got, want) {
		t.Errorf("Symbols() = %v, want %v", got, want)
	}
}

func TestLedger_Position(t *testing.T) {
	ledger := NewLedger()
	ledger.Append(
		NewBuy(NewDate(2025, time.January, 10), "AAPL", Q(100), USD(150)),
		NewBuy(NewDate(2025, time.January, 15), "GOOG", Q(50), USD(2800)),
		NewSell(NewDate(2025, time.February, 1), "AAPL", Q(25), USD(160)),
		NewBuy(NewDate(2025, time.February, 10), "AAPL", Q(10), USD(155)),
		NewSell(NewDate(2025, time.March, 1), "GOOG", Q(50), USD(2900)),
	)

	testCases := []struct {
		name   string
		symbol string
		date   Date
		want   Quantity
	}{
		{"before any transaction", "AAPL", NewDate(2025, time.January, 9), Q(0)},
		{"on the day of the first buy", "AAPL", NewDate(2025, time.January, 10), Q(100)},
		{"on the day of the sell", "AAPL", NewDate(2025, time.February, 1), Q(75)},
		{"after the second buy", "AAPL", NewDate(2025, time.February, 10), Q(85)},
		{"before selling all", "GOOG", NewDate(2025, time.February, 28), Q(50)},
		{"after selling all", "GOOG", NewDate(2025, time.March, 1), Q(0)},
		{"unknown symbol", "MSFT", NewDate(2025, time.March, 1), Q(0)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ledger.Position(tc.symbol, tc.date)
			if err != nil {
				t.Fatalf("Position() error = %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Position(%q, %s) = %s, want %s", tc.symbol, tc.date, got, tc.want)
			}
		})
	}
}

func TestLedger_Validate(t *testing.T) {
	ledger := NewLedger()
	ledger.Append(NewBuy(day(time.January, 10), "AAPL", Q(100), USD(150)))

	t.Run("sell all", func(t *testing.T) {
		tx, err := ledger.Validate(NewSell(day(time.February, 1), "AAPL", Q(0), USD(160)))
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if !tx.Quantity.Equal(Q(100)) {
			t.Errorf("sell all quantity = %s, want 100", tx.Quantity)
		}
	})

	t.Run("oversell", func(t *testing.T) {
		_, err := ledger.Validate(NewSell(day(time.February, 1), "AAPL", Q(101), USD(160)))
		var insufficient *InsufficientLotsError
		if !errors.As(err, &insufficient) {
			t.Fatalf("Validate() error = %v, want an *InsufficientLotsError", err)
		}
	})

	t.Run("sell before buy", func(t *testing.T) {
		_, err := ledger.Validate(NewSell(day(time.January, 9), "AAPL", Q(1), USD(160)))
		if !errors.Is(err, ErrInsufficientLots) {
			t.Errorf("Validate() error = %v, want ErrInsufficientLots", err)
		}
	})

	t.Run("sell all of nothing", func(t *testing.T) {
		_, err := ledger.Validate(NewSell(day(time.February, 1), "MSFT", Q(0), USD(160)))
		if !errors.Is(err, ErrInvalidTransaction) {
			t.Errorf("Validate() error = %v, want ErrInvalidTransaction", err)
		}
	})

	t.Run("sell in another currency", func(t *testing.T) {
		_, err := ledger.Validate(NewSell(day(time.February, 1), "AAPL", Q(5), M(90, "EUR")))
		var invalidTx *InvalidTransactionError
		if !errors.As(err, &invalidTx) {
			t.Fatalf("Validate() error = %v, want an *InvalidTransactionError", err)
		}
	})

	t.Run("buy in another currency", func(t *testing.T) {
		_, err := ledger.Validate(NewBuy(day(time.February, 1), "AAPL", Q(5), M(90, "EUR")))
		if !errors.Is(err, ErrInvalidTransaction) {
			t.Errorf("Validate() error = %v, want ErrInvalidTransaction", err)
		}
	})

	t.Run("default date", func(t *testing.T) {
		tx, err := ledger.Validate(NewBuy(Date{}, "AAPL", Q(1), USD(150)))
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if tx.Date != Today() {
			t.Errorf("date = %s, want today", tx.Date)
		}
	})
}
