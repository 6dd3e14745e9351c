package taxlots

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ReconcileAll reconciles independent portfolios concurrently, at most
// workers at a time (no limit when workers <= 0). Each portfolio is replayed
// sequentially into its own Tracker.
//
// The first failure cancels the portfolios not started yet and is returned.
func ReconcileAll(ctx context.Context, ledgers map[string]*Ledger, workers int) (map[string]*Book, error) {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	var mu sync.Mutex
	books := make(map[string]*Book, len(ledgers))
	for name, ledger := range ledgers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			book, err := Reconcile(ledger)
			if err != nil {
				return fmt.Errorf("portfolio %q: %w", name, err)
			}
			mu.Lock()
			books[name] = book
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return books, nil
}
