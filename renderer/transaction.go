package renderer

import (
	"fmt"

	"github.com/etnz/taxlots"
)

// Transaction renders a transaction to a string.
func Transaction(tx taxlots.Transaction) string {
	var s string
	switch tx.Type {
	case taxlots.Buy:
		s = fmt.Sprintf("Bought %s of %s at %s on %s", tx.Quantity, tx.Symbol, tx.Price, tx.Date)
	case taxlots.Sell:
		s = fmt.Sprintf("Sold %s of %s at %s on %s", tx.Quantity, tx.Symbol, tx.Price, tx.Date)
	default:
		return string(tx.Type)
	}
	if !tx.Commission.IsZero() {
		s += fmt.Sprintf(" (commission %s)", tx.Commission)
	}
	return s
}
