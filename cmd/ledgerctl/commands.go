package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_backend/internal/core/services"
	"github.com/SscSPs/ledger_backend/internal/platform/config"
	"github.com/SscSPs/ledger_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_backend/internal/repositories/memory"
	"github.com/SscSPs/ledger_backend/internal/utils/export"
	"github.com/SscSPs/ledger_backend/pkg/database"
	"github.com/google/subcommands"
)

// operatorID is recorded as the acting user. The CLI runs without a workplace authorizer.
const operatorID = "ledgerctl"

var commands = []subcommands.Command{
	&trialBalanceCmd{},
	&validateBatchCmd{},
}

// openRepositories connects to the configured storage backend.
func openRepositories(ctx context.Context) (portsrepo.RepositoryProvider, *config.Config, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, nil, err
	}
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		if cfg.SeedFile != "" {
			if err := store.LoadSeedFile(cfg.SeedFile); err != nil {
				return portsrepo.RepositoryProvider{}, nil, nil, err
			}
		}
		return store.RepositoryProvider(), cfg, func() {}, nil
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolConfig{MaxConns: 4})
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, nil, err
	}
	return pgsql.NewRepositoryProvider(pool), cfg, func() { database.ClosePgxPool(pool) }, nil
}

type trialBalanceCmd struct {
	workplace   string
	asOf        string
	periodStart string
}

func (*trialBalanceCmd) Name() string     { return "trial-balance" }
func (*trialBalanceCmd) Synopsis() string { return "write the trial balance of a workplace as CSV" }
func (*trialBalanceCmd) Usage() string {
	return `ledgerctl trial-balance -workplace <id> [-as-of <YYYY-MM-DD>] [-period-start <YYYY-MM-DD>]

  Writes the trial balance grouped by account category to stdout as CSV.
  The period starts on January 1 of the as-of year unless -period-start is given.
`
}

func (c *trialBalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.workplace, "workplace", "", "Workplace ID (required).")
	f.StringVar(&c.asOf, "as-of", time.Now().UTC().Format(domain.DateLayout), "Report date.")
	f.StringVar(&c.periodStart, "period-start", "", "Start of the reporting period.")
}

func (c *trialBalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.workplace == "" {
		fmt.Fprintln(os.Stderr, "-workplace is required")
		return subcommands.ExitUsageError
	}
	asOf, err := time.Parse(domain.DateLayout, c.asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -as-of: %v\n", err)
		return subcommands.ExitUsageError
	}
	var periodStart *time.Time
	if c.periodStart != "" {
		start, err := time.Parse(domain.DateLayout, c.periodStart)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -period-start: %v\n", err)
			return subcommands.ExitUsageError
		}
		periodStart = &start
	}

	repos, _, closeRepos, err := openRepositories(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeRepos()

	report, err := services.NewReportingService(repos.ReportingRepo).TrialBalance(ctx, c.workplace, periodStart, asOf, operatorID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := export.WriteTrialBalanceCSV(os.Stdout, report); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type validateBatchCmd struct {
	workplace string
	file      string
}

func (*validateBatchCmd) Name() string     { return "validate-batch" }
func (*validateBatchCmd) Synopsis() string { return "check a CSV batch of journal entry rows" }
func (*validateBatchCmd) Usage() string {
	return `ledgerctl validate-batch -workplace <id> -file <rows.csv>

  Reads rows with the columns reference, date, description, accountCode,
  accountName, debitAmount, creditAmount and lineDescription, validates them
  against the workplace's accounts and prints one line per row error.
  Nothing is written. Exits non-zero when any row is rejected.
`
}

func (c *validateBatchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.workplace, "workplace", "", "Workplace ID (required).")
	f.StringVar(&c.file, "file", "", "CSV file of rows (required).")
}

func (c *validateBatchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.workplace == "" || c.file == "" {
		fmt.Fprintln(os.Stderr, "-workplace and -file are required")
		return subcommands.ExitUsageError
	}

	in, err := os.Open(c.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer in.Close()
	rows, err := export.ReadImportRows(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	repos, cfg, closeRepos, err := openRepositories(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeRepos()

	// Validation never writes, so no journal service is needed.
	batch, err := services.NewBatchImportService(repos.AccountRepo, nil, services.BatchImportConfig{Workers: cfg.BatchImportWorkers})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer batch.Release()

	result, err := batch.ValidateBatch(ctx, c.workplace, rows, operatorID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	for _, e := range result.Errors {
		fmt.Printf("row %d: %s\n", e.Row, e.Message)
	}
	fmt.Printf("%d rows, %d valid entries, %d row errors\n", len(rows), len(result.ValidatedEntries), len(result.Errors))
	if len(result.Errors) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
