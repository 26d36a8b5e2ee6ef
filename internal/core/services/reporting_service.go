package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingWorkplaceAuthorizer sets the workplace authorizer for the reporting service.
func WithReportingWorkplaceAuthorizer(authorizer portssvc.WorkplaceAuthorizerSvc) ReportingServiceOption {
	return func(s *reportingService) {
		s.WorkplaceAuthorizer = authorizer
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance generates a trial balance report as of a specific date
func (s *reportingService) TrialBalance(ctx context.Context, workplaceID string, periodStart *time.Time, asOf time.Time, userID string) (*domain.TrialBalanceReport, error) {
	// ReadOnly is sufficient for viewing reports
	if err := s.AuthorizeUser(ctx, userID, workplaceID, domain.RoleReadOnly); err != nil {
		s.LogError(ctx, err, "User not authorized to view trial balance report",
			slog.String("user_id", userID),
			slog.String("workplace_id", workplaceID))
		return nil, err
	}

	start := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if periodStart != nil {
		start = *periodStart
	}
	if start.After(asOf) {
		return nil, fmt.Errorf("%w: period start %s is after as-of date %s", apperrors.ErrValidation,
			start.Format(domain.DateLayout), asOf.Format(domain.DateLayout))
	}

	activity, err := s.reportingRepo.GetAccountActivity(ctx, workplaceID, start, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data",
			slog.String("workplace_id", workplaceID),
			slog.String("asOf", asOf.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	report, err := BuildTrialBalance(workplaceID, start, asOf, activity)
	if err != nil {
		s.LogError(ctx, err, "Trial balance invariant violated",
			slog.String("workplace_id", workplaceID),
			slog.String("asOf", asOf.Format(time.RFC3339)))
		return nil, err
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("workplace_id", workplaceID),
		slog.String("asOf", asOf.Format(time.RFC3339)),
		slog.Int("row_count", len(activity)))
	return report, nil
}

// BuildTrialBalance rolls per-account activity into the categorised report and checks that
// period debits equal period credits.
func BuildTrialBalance(workplaceID string, periodStart, asOf time.Time, activity []domain.AccountActivity) (*domain.TrialBalanceReport, error) {
	byType := make(map[domain.AccountType][]domain.TrialBalanceRow, len(domain.TrialBalanceCategories))
	for _, a := range activity {
		beginning := a.OpeningAmount
		if a.Account.AccountType.IsPeriodReset() {
			beginning = decimal.Zero
		}
		ending, err := accounting.EndingBalance(a.Account.AccountType, beginning, a.PeriodDebit, a.PeriodCredit)
		if err != nil {
			return nil, fmt.Errorf("%w: account %s: %v", apperrors.ErrInvariantViolation, a.Account.AccountID, err)
		}
		byType[a.Account.AccountType] = append(byType[a.Account.AccountType], domain.TrialBalanceRow{
			AccountID:        a.Account.AccountID,
			Code:             a.Account.Code,
			Name:             a.Account.Name,
			AccountType:      a.Account.AccountType,
			BeginningBalance: beginning,
			PeriodDebit:      a.PeriodDebit,
			PeriodCredit:     a.PeriodCredit,
			EndingBalance:    ending,
		})
	}

	report := &domain.TrialBalanceReport{
		WorkplaceID: workplaceID,
		PeriodStart: periodStart,
		AsOf:        asOf,
		Categories:  make([]domain.TrialBalanceCategory, 0, len(domain.TrialBalanceCategories)),
	}
	for _, c := range domain.TrialBalanceCategories {
		rows := byType[c.Type]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
		category := domain.TrialBalanceCategory{Name: c.Name, AccountType: c.Type, Rows: rows}
		for _, r := range rows {
			category.Subtotal = category.Subtotal.Add(r)
			report.Total = report.Total.Add(r)
		}
		if category.Rows == nil {
			category.Rows = []domain.TrialBalanceRow{}
		}
		report.Categories = append(report.Categories, category)
	}

	if !domain.IsBalanced(report.Total.Debit, report.Total.Credit) {
		return nil, &apperrors.TrialBalanceMismatchError{
			TotalDebit:  report.Total.Debit,
			TotalCredit: report.Total.Credit,
		}
	}
	return report, nil
}
