package repositories

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// LedgerWriter applies postings to the append-only log and the balance cache.
type LedgerWriter interface {
	// ApplyPostings atomically performs the optimistic status change, locks the affected
	// balances in ascending account id order, appends the postings, updates the balances
	// and stores the outbox event. Nothing is visible unless all of it succeeds.
	ApplyPostings(ctx context.Context, batch domain.PostingBatch) error
}

// LedgerReader exposes the posting log and balance cache.
type LedgerReader interface {
	ListPostingsByEntry(ctx context.Context, workplaceID, entryID string) ([]domain.LedgerPosting, error)
	FindBalances(ctx context.Context, workplaceID string, accountIDs []string) (map[string]domain.AccountBalance, error)
}

// LedgerRepositoryFacade combines ledger read and write operations.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
