package repositories

// RepositoryProvider holds all repository interfaces needed by services.
type RepositoryProvider struct {
	AccountRepo   AccountRegistry
	JournalRepo   JournalRepositoryFacade
	LedgerRepo    LedgerRepositoryFacade
	ReportingRepo ReportingRepository
	OutboxRepo    OutboxRepository
	WorkplaceRepo WorkplaceMembershipReader
}
