package pgsql

import (
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every Postgres repository onto the same pool.
func NewRepositoryProvider(dbPool DBPool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   newPgxAccountRepository(dbPool),
		JournalRepo:   newPgxJournalRepository(dbPool),
		LedgerRepo:    newPgxLedgerRepository(dbPool),
		ReportingRepo: newReportingRepository(dbPool),
		OutboxRepo:    newPgxOutboxRepository(dbPool),
		WorkplaceRepo: newPgxWorkplaceRepository(dbPool),
	}
}
