package cmd

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/config"
	"github.com/etnz/taxlots/scheduler"
	"github.com/etnz/taxlots/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type reconcileCmd struct {
	schedule bool
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "reconcile every portfolio into the database" }
func (*reconcileCmd) Usage() string {
	return `taxlots reconcile [-schedule]

  Replays the ledger of every portfolio of the ledger folder, concurrently, and
  stores the transactions and the realized gains in the database.
  With -schedule, keeps running and reconciles on the configured schedule.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.schedule, "schedule", false, "Run on the configured cron schedule until interrupted")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logger := newLogger(cfg.LogLevel)
	job := &reconcileJob{cfg: cfg, log: logger.With().Str("component", "reconcile").Logger()}

	if !c.schedule {
		if err := job.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	ctx, stop := signal.NotifyContext(logger.WithContext(ctx), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runScheduled(ctx, scheduler.New(logger), cfg.Schedule, job); err != nil {
		fmt.Fprintf(os.Stderr, "Error scheduling %q: %v\n", cfg.Schedule, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runScheduled runs job once, then on schedule until ctx is done.
func runScheduled(ctx context.Context, s *scheduler.Scheduler, schedule string, job scheduler.Job) error {
	if err := s.AddJob(schedule, job); err != nil {
		return err
	}
	if err := s.RunNow(job); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job", job.Name()).Msg("first run failed")
	}
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}

// reconcileJob reconciles every portfolio of the ledger folder and stores the
// result.
type reconcileJob struct {
	cfg *config.Config
	log zerolog.Logger
}

func (j *reconcileJob) Name() string { return "reconcile" }

func (j *reconcileJob) Run() error {
	ctx := j.log.WithContext(context.Background())

	ledgers, err := decodeLedgers(j.cfg.LedgerDir)
	if err != nil {
		return err
	}
	books, err := taxlots.ReconcileAll(ctx, ledgers, j.cfg.Workers)
	if err != nil {
		return err
	}

	db, err := store.Open(j.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, name := range slices.Sorted(maps.Keys(books)) {
		if err := db.SaveTransactions(ctx, name, ledgers[name]); err != nil {
			return fmt.Errorf("portfolio %q: %w", name, err)
		}
		if err := db.ReplaceGains(ctx, name, books[name].Gains); err != nil {
			return fmt.Errorf("portfolio %q: %w", name, err)
		}
		j.log.Info().
			Str("portfolio", name).
			Int("transactions", ledgers[name].Len()).
			Int("gains", len(books[name].Gains)).
			Msg("reconciled")
	}
	return nil
}
