package services

// ServiceContainer holds all service interfaces used by the handlers.
type ServiceContainer struct {
	Journal     JournalSvcFacade
	Reporting   ReportingService
	BatchImport BatchImportSvc
	Authorizer  WorkplaceAuthorizerSvc
}
