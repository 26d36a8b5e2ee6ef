package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// ReportingRepository provides the posting aggregates reports are built from.
type ReportingRepository interface {
	// GetAccountActivity returns, per account of the workplace, the signed sum of postings dated
	// before periodStart and the debit/credit totals of postings dated within [periodStart, asOf].
	// Accounts that are inactive and never posted to are omitted.
	GetAccountActivity(ctx context.Context, workplaceID string, periodStart, asOf time.Time) ([]domain.AccountActivity, error)
}
