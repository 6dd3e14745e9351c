// Package cmd implements the CLI application to track the tax lots of
// portfolios.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/config"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Commands returns the subcommands and their group.
func Commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"transactions": {&buyCmd{}, &sellCmd{}},
		"reports":      {&lotsCmd{}, &gainsCmd{}, &holdingCmd{}},
		"batch":        {&reconcileCmd{}},
		"help":         {&topicCmd{}},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	groups := Commands()
	for _, group := range slices.Sorted(maps.Keys(groups)) {
		for _, cmd := range groups[group] {
			c.Register(cmd, group)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "taxlots.toml", "Path to the configuration file (TOML format)")
var ledgerDir = flag.String("ledger-dir", "", "Folder of the ledger files, one <portfolio>.jsonl per portfolio. Overrides the configuration.")
var rawMarkdown = flag.Bool("raw", false, "Print reports as raw markdown")

// Verbose turns the log level to debug.
var Verbose = flag.Bool("v", false, "Verbose output")

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, fmt.Errorf("cannot load configuration %q: %w", *configFile, err)
	}
	if *ledgerDir != "" {
		cfg.LedgerDir = *ledgerDir
	}
	if *Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger creates the root logger of the application, writing to stderr.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// ledgerPath returns the ledger file of a portfolio.
func ledgerPath(cfg *config.Config, portfolio string) string {
	return filepath.Join(cfg.LedgerDir, portfolio+".jsonl")
}

// decodeLedger reads a ledger file. A missing file is an empty ledger.
func decodeLedger(path string) (*taxlots.Ledger, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return taxlots.NewLedger(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ledger, err := taxlots.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode ledger %q: %w", path, err)
	}
	return ledger, nil
}

// decodeLedgers reads every ledger file of dir, by portfolio name.
func decodeLedgers(dir string) (map[string]*taxlots.Ledger, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	ledgers := make(map[string]*taxlots.Ledger, len(files))
	for _, file := range files {
		ledger, err := decodeLedger(file)
		if err != nil {
			return nil, err
		}
		ledgers[strings.TrimSuffix(filepath.Base(file), ".jsonl")] = ledger
	}
	return ledgers, nil
}

// appendTransaction appends a transaction to the specified ledger file.
func appendTransaction(filename string, tx taxlots.Transaction) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open ledger file %q: %w", filename, err)
	}
	defer f.Close()

	if err := taxlots.EncodeTransaction(f, tx); err != nil {
		return fmt.Errorf("cannot write to ledger file %q: %w", filename, err)
	}
	return nil
}

// decodePrices reads the prices file.
func decodePrices(path string) (map[string]taxlots.Money, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return taxlots.DecodePrices(f)
}

// printMarkdown prints markdown to stdout, rendered for the terminal unless
// -raw is set.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
