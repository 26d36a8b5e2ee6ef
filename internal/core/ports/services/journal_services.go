package services

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/SscSPs/ledger_backend/internal/dto"
)

// JournalReaderSvc defines read operations on journal entries.
type JournalReaderSvc interface {
	GetEntry(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, workplaceID, userID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
	ListPostings(ctx context.Context, workplaceID, entryID, userID string) ([]domain.LedgerPosting, error)
}

// JournalWriterSvc defines operations on DRAFT entries.
type JournalWriterSvc interface {
	CreateDraft(ctx context.Context, workplaceID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error)
	UpdateDraft(ctx context.Context, workplaceID, entryID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error)
}

// JournalLifecycleSvc moves entries through the lifecycle. Each call returns the updated entry.
type JournalLifecycleSvc interface {
	Submit(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error)
	Approve(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error)
	Reject(ctx context.Context, workplaceID, entryID, reason, userID string) (*domain.JournalEntry, error)
	Post(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error)
	Void(ctx context.Context, workplaceID, entryID, reason, userID string) (*domain.JournalEntry, error)
	// Duplicate returns the new DRAFT copy; the source entry is untouched.
	Duplicate(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal entry service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalLifecycleSvc
}
