// Package store keeps reconciled portfolios in a SQLite database: the
// transactions of each portfolio and the realized gains computed from them.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/taxlots"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store reads and writes portfolios in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates its schema.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection, an in-memory database is per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func migrate(db *sql.DB) error {
	// decimals are TEXT to keep them exact.
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		portfolio TEXT NOT NULL,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity TEXT NOT NULL,
		price TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT '',
		commission TEXT NOT NULL DEFAULT '0',
		memo TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (portfolio, id)
	);

	CREATE TABLE IF NOT EXISTS realized_gains (
		portfolio TEXT NOT NULL,
		seq INTEGER NOT NULL,
		lot_id TEXT NOT NULL,
		sale_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity TEXT NOT NULL,
		acquired TEXT NOT NULL,
		sold TEXT NOT NULL,
		unit_cost TEXT NOT NULL,
		sale_price TEXT NOT NULL,
		cost_basis TEXT NOT NULL,
		proceeds TEXT NOT NULL,
		gain TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT '',
		term TEXT NOT NULL,
		wash_sale INTEGER NOT NULL DEFAULT 0,
		disallowed TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (portfolio, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_realized_gains_sold ON realized_gains(portfolio, sold);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// withTransaction runs fn in a database transaction, committed when fn
// succeeds and rolled back otherwise.
func (s *Store) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SaveTransactions replaces the transactions of portfolio by the ones of the
// ledger.
func (s *Store) SaveTransactions(ctx context.Context, portfolio string, ledger *taxlots.Ledger) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE portfolio = ?`, portfolio); err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions(portfolio, seq, id, type, date, symbol, quantity, price, currency, commission, memo)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert transaction: %w", err)
		}
		defer stmt.Close()

		seq := 0
		for t := range ledger.Transactions() {
			seq++
			id := t.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			if _, err := stmt.ExecContext(ctx, portfolio, seq, id.String(), string(t.Type), t.Date.String(), t.Symbol,
				t.Quantity.String(), t.Price.Decimal().String(), t.Price.Currency(),
				t.Commission.Decimal().String(), t.Memo); err != nil {
				return fmt.Errorf("insert transaction %d: %w", seq, err)
			}
		}
		return nil
	})
}

// LoadLedger reads the transactions of portfolio.
func (s *Store) LoadLedger(ctx context.Context, portfolio string) (*taxlots.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, date, symbol, quantity, price, currency, commission, memo
		FROM transactions WHERE portfolio = ? ORDER BY seq ASC`, portfolio)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []taxlots.Transaction
	for rows.Next() {
		var id, typ, date, symbol, quantity, price, currency, commission, memo string
		if err := rows.Scan(&id, &typ, &date, &symbol, &quantity, &price, &currency, &commission, &memo); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t, err := parseTransaction(id, typ, date, symbol, quantity, price, currency, commission)
		if err != nil {
			return nil, fmt.Errorf("read transaction %s: %w", id, err)
		}
		t.Memo = memo
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	ledger := taxlots.NewLedger()
	ledger.Append(txs...)
	return ledger, nil
}

func parseTransaction(id, typ, date, symbol, quantity, price, currency, commission string) (taxlots.Transaction, error) {
	var t taxlots.Transaction
	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return t, err
	}
	if t.Type, err = taxlots.ParseTxType(typ); err != nil {
		return t, err
	}
	if t.Date, err = taxlots.ParseDate(date); err != nil {
		return t, err
	}
	t.Symbol = symbol
	if t.Quantity, err = taxlots.ParseQuantity(quantity); err != nil {
		return t, err
	}
	if t.Price, err = parseMoney(price, currency); err != nil {
		return t, err
	}
	if t.Commission, err = parseMoney(commission, currency); err != nil {
		return t, err
	}
	return t, nil
}

func parseMoney(s, currency string) (taxlots.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return taxlots.Money{}, err
	}
	return taxlots.M(d, currency), nil
}

// Portfolios returns the names of the portfolios in the database, sorted.
func (s *Store) Portfolios(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT portfolio FROM transactions ORDER BY portfolio ASC`)
	if err != nil {
		return nil, fmt.Errorf("query portfolios: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolios: %w", err)
	}
	return names, nil
}

// ReplaceGains replaces the realized gains of portfolio.
func (s *Store) ReplaceGains(ctx context.Context, portfolio string, gains []taxlots.RealizedGain) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM realized_gains WHERE portfolio = ?`, portfolio); err != nil {
			return fmt.Errorf("delete gains: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO realized_gains(portfolio, seq, lot_id, sale_id, symbol, quantity, acquired, sold,
				unit_cost, sale_price, cost_basis, proceeds, gain, currency, term, wash_sale, disallowed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert gain: %w", err)
		}
		defer stmt.Close()

		for i, g := range gains {
			wash := 0
			if g.WashSale {
				wash = 1
			}
			if _, err := stmt.ExecContext(ctx, portfolio, i+1, g.LotID.String(), g.SaleID.String(), g.Symbol, g.Quantity.String(),
				g.Acquired.String(), g.Sold.String(), g.UnitCost.Decimal().String(), g.SalePrice.Decimal().String(),
				g.CostBasis.Decimal().String(), g.Proceeds.Decimal().String(), g.Gain.Decimal().String(), g.Gain.Currency(), g.Term.String(), wash, g.Disallowed.Decimal().String()); err != nil {
				return fmt.Errorf("insert gain %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// Gains returns the realized gains of portfolio sold during year, or of all
// years when year is 0, in the order they were realized.
func (s *Store) Gains(ctx context.Context, portfolio string, year int) ([]taxlots.RealizedGain, error) {
	query := `
		SELECT lot_id, sale_id, symbol, quantity, acquired, sold, unit_cost, sale_price, cost_basis, proceeds, gain,
			currency, term, wash_sale, disallowed
		FROM realized_gains WHERE portfolio = ?`
	args := []any{portfolio}
	if year != 0 {
		query += ` AND sold >= ? AND sold < ?`
		args = append(args, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1))
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY seq ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query gains: %w", err)
	}
	defer rows.Close()

	gains := make([]taxlots.RealizedGain, 0)
	for rows.Next() {
		var lotID, saleID, symbol, quantity, acquired, sold, unitCost, salePrice, costBasis, proceeds, gain, currency, term, disallowed string
		var wash int
		if err := rows.Scan(&lotID, &saleID, &symbol, &quantity, &acquired, &sold, &unitCost, &salePrice, &costBasis, &proceeds, &gain,
			&currency, &term, &wash, &disallowed); err != nil {
			return nil, fmt.Errorf("scan gain: %w", err)
		}
		g := taxlots.RealizedGain{Symbol: symbol, WashSale: wash != 0}
		amounts := map[*taxlots.Money]string{
			&g.UnitCost:   unitCost,
			&g.SalePrice:  salePrice,
			&g.CostBasis:  costBasis,
			&g.Proceeds:   proceeds,
			&g.Gain:       gain,
			&g.Disallowed: disallowed,
		}
		if err := scanGain(&g, lotID, saleID, quantity, acquired, sold, currency, term, amounts); err != nil {
			return nil, fmt.Errorf("read gain of lot %s: %w", lotID, err)
		}
		gains = append(gains, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gains: %w", err)
	}
	return gains, nil
}

func scanGain(g *taxlots.RealizedGain, lotID, saleID, quantity, acquired, sold, currency, term string, amounts map[*taxlots.Money]string) error {
	var err error
	if g.LotID, err = uuid.Parse(lotID); err != nil {
		return err
	}
	if g.SaleID, err = uuid.Parse(saleID); err != nil {
		return err
	}
	if g.Quantity, err = taxlots.ParseQuantity(quantity); err != nil {
		return err
	}
	if g.Acquired, err = taxlots.ParseDate(acquired); err != nil {
		return err
	}
	if g.Sold, err = taxlots.ParseDate(sold); err != nil {
		return err
	}
	for m, s := range amounts {
		if *m, err = parseMoney(s, currency); err != nil {
			return err
		}
	}
	g.Term, err = taxlots.ParseTerm(term)
	return err
}
