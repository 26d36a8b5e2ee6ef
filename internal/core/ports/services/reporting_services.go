package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// ReportingService defines reporting operations.
type ReportingService interface {
	// TrialBalance builds the trial balance as of asOf. A nil periodStart means January 1 of asOf's year.
	TrialBalance(ctx context.Context, workplaceID string, periodStart *time.Time, asOf time.Time, userID string) (*domain.TrialBalanceReport, error)
}
