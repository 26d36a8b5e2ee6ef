package repositories

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/SscSPs/ledger_backend/internal/utils/pagination"
)

// EntryFilter narrows a journal entry listing.
type EntryFilter struct {
	Status *domain.EntryStatus
	Limit  int
	After  *pagination.EntryCursor
}

// JournalEntryReader defines read operations for journal entries.
type JournalEntryReader interface {
	// FindEntryByID returns the entry with its lines ordered by line number.
	FindEntryByID(ctx context.Context, workplaceID, entryID string) (*domain.JournalEntry, error)

	// ListEntries returns a page of entries (with lines) newest first and a token for the next page.
	ListEntries(ctx context.Context, workplaceID string, filter EntryFilter) ([]domain.JournalEntry, *string, error)
}

// JournalEntryWriter defines write operations for journal entries.
// Status changes that move money go through LedgerWriter.ApplyPostings instead.
type JournalEntryWriter interface {
	// CreateEntry inserts a new entry and its lines.
	CreateEntry(ctx context.Context, entry domain.JournalEntry) error

	// ReplaceDraft overwrites the header and lines of a DRAFT entry whose version is expectedVersion.
	ReplaceDraft(ctx context.Context, entry domain.JournalEntry, expectedVersion int64) error

	// TransitionStatus persists a status change only if the entry is still in change.From at
	// change.ExpectedVersion; otherwise it returns *apperrors.ConcurrentModificationError.
	TransitionStatus(ctx context.Context, workplaceID string, change domain.StatusChange) error
}

// JournalRepositoryFacade combines all journal entry repository interfaces.
type JournalRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
}
