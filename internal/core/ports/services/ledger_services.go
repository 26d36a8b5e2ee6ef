package services

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// LedgerPosterSvc applies entries to account balances.
type LedgerPosterSvc interface {
	// Post applies an APPROVED entry and returns it as POSTED.
	Post(ctx context.Context, entry domain.JournalEntry, userID string) (*domain.JournalEntry, error)
	// Void appends reversing postings for a POSTED entry and returns it as VOIDED.
	Void(ctx context.Context, entry domain.JournalEntry, reason, userID string) (*domain.JournalEntry, error)
}
