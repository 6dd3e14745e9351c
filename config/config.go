// Package config defines the configuration of the taxlots tools and provides
// validation helpers.
package config

import (
	"fmt"
	"strings"

	"github.com/etnz/taxlots"
	"github.com/robfig/cron/v3"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by TAXLOTS_* environment variables.
type Config struct {
	LedgerDir  string      `toml:"ledger_dir"`  // one <portfolio>.jsonl file per portfolio
	PricesFile string      `toml:"prices_file"` // JSONL prices used by holding
	Database   string      `toml:"database"`    // SQLite file written by reconcile
	Currency   string      `toml:"currency"`    // default currency of new transactions
	LogLevel   string      `toml:"log_level"`
	Workers    int         `toml:"workers"`  // portfolios or quotes processed concurrently
	Schedule   string      `toml:"schedule"` // cron spec of the scheduled reconcile
	Quote      QuoteConfig `toml:"quote"`
}

// QuoteConfig selects and configures the market data provider.
type QuoteConfig struct {
	Provider string            `toml:"provider"` // "static", "tradegate" or "jsonpath"
	BaseURL  string            `toml:"base_url"`
	Path     string            `toml:"path"`     // jsonpath expression, for the jsonpath provider
	Currency string            `toml:"currency"` // currency of the jsonpath provider prices
	CacheDir string            `toml:"cache_dir"`
	ISIN     map[string]string `toml:"isin"` // symbol to ISIN, for the tradegate provider
}

// Defaults returns a Config populated with sensible default values.
func Defaults() Config {
	return Config{
		LedgerDir:  "ledgers",
		PricesFile: "prices.jsonl",
		Database:   "taxlots.db",
		Currency:   "USD",
		LogLevel:   "info",
		Workers:    4,
		Schedule:   "0 30 18 * * MON-FRI",
		Quote: QuoteConfig{
			Provider: "static",
			ISIN:     map[string]string{},
		},
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validProviders = map[string]bool{
	"static": true, "tradegate": true, "jsonpath": true,
}

// scheduleParser accepts cron specs with an optional seconds field.
var scheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a cron spec the way the scheduler does.
func ParseSchedule(spec string) (cron.Schedule, error) { return scheduleParser.Parse(spec) }

// Validate checks the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errs []string

	if c.LedgerDir == "" {
		errs = append(errs, "ledger_dir must not be empty")
	}
	if c.Database == "" {
		errs = append(errs, "database must not be empty")
	}
	if err := taxlots.ValidateCurrency(c.Currency); err != nil {
		errs = append(errs, fmt.Sprintf("currency: %v", err))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Sprintf("workers must be >= 1, got %d", c.Workers))
	}
	if _, err := ParseSchedule(c.Schedule); err != nil {
		errs = append(errs, fmt.Sprintf("schedule %q: %v", c.Schedule, err))
	}

	switch p := strings.ToLower(c.Quote.Provider); {
	case !validProviders[p]:
		errs = append(errs, fmt.Sprintf("quote: unknown provider %q (valid: static, tradegate, jsonpath)", c.Quote.Provider))
	case p == "jsonpath":
		if c.Quote.BaseURL == "" || c.Quote.Path == "" {
			errs = append(errs, "quote: base_url and path are required for the jsonpath provider")
		}
		if err := taxlots.ValidateCurrency(c.Quote.Currency); err != nil {
			errs = append(errs, fmt.Sprintf("quote: currency: %v", err))
		}
	case p == "static":
		if c.PricesFile == "" {
			errs = append(errs, "prices_file is required for the static provider")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
