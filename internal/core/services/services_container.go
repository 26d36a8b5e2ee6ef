package services

import (
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// The returned release func stops the batch import worker pool.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) (*portssvc.ServiceContainer, func(), error) {
	container := &portssvc.ServiceContainer{}

	// The authorizer comes first since every other service depends on it
	container.Authorizer = NewWorkplaceAuthorizer(repos.WorkplaceRepo)

	poster := NewLedgerPoster(repos.LedgerRepo, repos.AccountRepo)
	container.Journal = NewJournalService(
		repos.JournalRepo,
		repos.AccountRepo,
		repos.LedgerRepo,
		poster,
		WithJournalWorkplaceAuthorizer(container.Authorizer),
	)
	container.Reporting = NewReportingService(repos.ReportingRepo, WithReportingWorkplaceAuthorizer(container.Authorizer))

	batch, err := NewBatchImportService(
		repos.AccountRepo,
		container.Journal,
		BatchImportConfig{Workers: cfg.BatchImportWorkers},
		WithBatchWorkplaceAuthorizer(container.Authorizer),
	)
	if err != nil {
		return nil, nil, err
	}
	container.BatchImport = batch

	return container, batch.Release, nil
}
