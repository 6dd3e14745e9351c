package taxlots

import (
	"errors"
	"fmt"
)

// Sentinel errors, to be matched with errors.Is. The typed errors below wrap
// them and carry the context needed to diagnose the failure.
var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInsufficientLots   = errors.New("insufficient lots")
	ErrMissingPrice       = errors.New("missing price")
	ErrCurrencyMismatch   = errors.New("currency mismatch")
)

// InvalidTransactionError reports a transaction or lot operation with
// malformed input: non-positive quantity, negative price, cost or commission,
// empty symbol or zero date.
type InvalidTransactionError struct {
	Symbol string
	Date   Date
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("invalid transaction on %s: %s", e.Date, e.Reason)
	}
	return fmt.Sprintf("invalid transaction on %s for %q: %s", e.Date, e.Symbol, e.Reason)
}

func (e *InvalidTransactionError) Unwrap() error { return ErrInvalidTransaction }

func invalid(symbol string, on Date, format string, args ...any) *InvalidTransactionError {
	return &InvalidTransactionError{Symbol: symbol, Date: on, Reason: fmt.Sprintf(format, args...)}
}

// InsufficientLotsError reports a sale of more units than the open lots of
// the symbol hold. It usually means a short sale or a missing buy upstream.
type InsufficientLotsError struct {
	Symbol    string
	Date      Date
	Requested Quantity
	Available Quantity
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("on %s, cannot sell %s %q: only %s available in open lots", e.Date, e.Requested, e.Symbol, e.Available)
}

func (e *InsufficientLotsError) Unwrap() error { return ErrInsufficientLots }

// MissingPriceError reports a valuation of a symbol held in open lots for
// which no current price was supplied.
type MissingPriceError struct {
	Symbol string
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("no current price for %q", e.Symbol)
}

func (e *MissingPriceError) Unwrap() error { return ErrMissingPrice }

// CurrencyMismatchError reports a valuation mixing amounts of different
// currencies: a price quoted in another currency than the lots, or positions
// held in several currencies.
type CurrencyMismatchError struct {
	Symbol string
	Want   string
	Got    string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("%q is in %s, want %s", e.Symbol, e.Got, e.Want)
}

func (e *CurrencyMismatchError) Unwrap() error { return ErrCurrencyMismatch }
