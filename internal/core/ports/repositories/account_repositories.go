package repositories

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// AccountRegistry is the read-only view of accounts the ledger core consumes.
// Accounts are owned elsewhere; the core never writes them.
type AccountRegistry interface {
	// FindAccountsByIDs returns the accounts of the workplace with the given ids, keyed by id.
	// Missing ids are simply absent from the map.
	FindAccountsByIDs(ctx context.Context, workplaceID string, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountsByCodes returns the accounts of the workplace with the given codes, keyed by code.
	FindAccountsByCodes(ctx context.Context, workplaceID string, codes []string) (map[string]domain.Account, error)

	// ListAccounts returns every account of the workplace ordered by code.
	ListAccounts(ctx context.Context, workplaceID string) ([]domain.Account, error)
}
