package taxlots

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeLedger decodes transactions from a stream of JSONL data, one
// transaction per line, and returns a sorted Ledger. Empty lines are skipped.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := bytes.TrimSpace(scanner.Bytes())
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return nil, fmt.Errorf("line %d: could not decode transaction %q: %w", line, string(lineBytes), err)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ledger.Append(tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	return ledger, nil
}

// EncodeTransaction writes a single transaction as a JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	b, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("could not encode transaction: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// EncodeLedger writes every transaction of the ledger, in chronological order.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for tx := range ledger.Transactions() {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
