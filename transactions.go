package taxlots

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxType identifies the kind of a transaction.
type TxType string

// Transaction types.
const (
	Buy  TxType = "buy"
	Sell TxType = "sell"
)

// ParseTxType parses a string into a TxType.
func ParseTxType(s string) (TxType, error) {
	switch TxType(s) {
	case Buy, Sell:
		return TxType(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Transaction is an immutable buy or sell event on a single symbol.
//
// Transactions of a symbol must be replayed in non-decreasing date order for
// the FIFO matching to be correct; a Ledger keeps them that way.
type Transaction struct {
	ID         uuid.UUID // ID identifies the transaction, and the lot it opens for a buy.
	Type       TxType
	Date       Date
	Symbol     string
	Quantity   Quantity // Quantity is the number of units bought or sold.
	Price      Money    // Price is the unit price.
	Commission Money    // Commission is the optional fee paid for the whole transaction.
	Memo       string
}

// NewBuy creates a new buy transaction.
func NewBuy(day Date, symbol string, quantity Quantity, price Money) Transaction {
	return Transaction{Type: Buy, Date: day, Symbol: symbol, Quantity: quantity, Price: price}
}

// NewSell creates a new sell transaction.
func NewSell(day Date, symbol string, quantity Quantity, price Money) Transaction {
	return Transaction{Type: Sell, Date: day, Symbol: symbol, Quantity: quantity, Price: price}
}

// WithCommission returns a copy of t with the commission set.
func (t Transaction) WithCommission(c Money) Transaction {
	t.Commission = c
	return t
}

// WithMemo returns a copy of t with the memo set.
func (t Transaction) WithMemo(memo string) Transaction {
	t.Memo = memo
	return t
}

// Amount returns the gross amount of the transaction, before commission.
func (t Transaction) Amount() Money { return t.Price.Mul(t.Quantity) }

// unitCost returns the cost of a unit bought, commission included.
func (t Transaction) unitCost() Money {
	if t.Commission.IsZero() {
		return t.Price
	}
	return t.Amount().Add(t.Commission).Div(t.Quantity)
}

// Currency returns the currency of the transaction price.
func (t Transaction) Currency() string { return t.Price.Currency() }

// Validate checks the transaction fields and returns an *InvalidTransactionError
// describing the first problem found.
func (t Transaction) Validate() error {
	if t.Type != Buy && t.Type != Sell {
		return invalid(t.Symbol, t.Date, "unknown transaction type %q", t.Type)
	}
	if t.Symbol == "" {
		return invalid(t.Symbol, t.Date, "symbol is missing")
	}
	if t.Date.IsZero() {
		return invalid(t.Symbol, t.Date, "date is missing")
	}
	if !t.Quantity.IsPositive() {
		return invalid(t.Symbol, t.Date, "%s quantity must be positive, got %s", t.Type, t.Quantity)
	}
	if t.Price.IsNegative() {
		return invalid(t.Symbol, t.Date, "%s price must not be negative, got %s", t.Type, t.Price.Decimal())
	}
	if t.Commission.IsNegative() {
		return invalid(t.Symbol, t.Date, "commission must not be negative, got %s", t.Commission.Decimal())
	}
	if c := t.Commission.Currency(); c != "" && t.Price.Currency() != "" && c != t.Price.Currency() {
		return invalid(t.Symbol, t.Date, "commission currency %s does not match price currency %s", c, t.Price.Currency())
	}
	return nil
}

// Equal reports whether t and o describe the same transaction.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID && t.Type == o.Type && t.Date == o.Date && t.Symbol == o.Symbol &&
		t.Quantity.Equal(o.Quantity) && t.Price.Equal(o.Price) &&
		t.Commission.Decimal().Equal(o.Commission.Decimal()) && t.Memo == o.Memo
}

// MarshalJSON writes the transaction with a stable field order, the one used
// in ledger files.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	if t.ID != uuid.Nil {
		w.Append("id", t.ID)
	}
	w.Append("type", t.Type)
	w.Append("date", t.Date)
	w.Append("symbol", t.Symbol)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.Decimal())
	w.Optional("currency", t.Price.Currency())
	if !t.Commission.IsZero() {
		w.Append("commission", t.Commission.Decimal())
	}
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface. Price and
// commission share the single currency field.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID         uuid.UUID       `json:"id"`
		Type       TxType          `json:"type"`
		Date       Date            `json:"date"`
		Symbol     string          `json:"symbol"`
		Quantity   Quantity        `json:"quantity"`
		Price      decimal.Decimal `json:"price"`
		Currency   string          `json:"currency"`
		Commission decimal.Decimal `json:"commission"`
		Memo       string          `json:"memo"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*t = Transaction{
		ID:         temp.ID,
		Type:       temp.Type,
		Date:       temp.Date,
		Symbol:     temp.Symbol,
		Quantity:   temp.Quantity,
		Price:      M(temp.Price, temp.Currency),
		Commission: M(temp.Commission, temp.Currency),
		Memo:       temp.Memo,
	}
	return nil
}
