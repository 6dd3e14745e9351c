package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TAXLOTS_* environment variable overrides, and
// validates the result. A missing file is not an error: defaults and
// environment are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides overwrites the Config fields whose TAXLOTS_* environment
// variable is set.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.LedgerDir, "TAXLOTS_LEDGER_DIR")
	setStr(&cfg.PricesFile, "TAXLOTS_PRICES_FILE")
	setStr(&cfg.Database, "TAXLOTS_DATABASE")
	setStr(&cfg.Currency, "TAXLOTS_CURRENCY")
	setStr(&cfg.LogLevel, "TAXLOTS_LOG_LEVEL")
	setInt(&cfg.Workers, "TAXLOTS_WORKERS")
	setStr(&cfg.Schedule, "TAXLOTS_SCHEDULE")

	setStr(&cfg.Quote.Provider, "TAXLOTS_QUOTE_PROVIDER")
	setStr(&cfg.Quote.BaseURL, "TAXLOTS_QUOTE_BASE_URL")
	setStr(&cfg.Quote.Path, "TAXLOTS_QUOTE_PATH")
	setStr(&cfg.Quote.Currency, "TAXLOTS_QUOTE_CURRENCY")
	setStr(&cfg.Quote.CacheDir, "TAXLOTS_QUOTE_CACHE_DIR")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
