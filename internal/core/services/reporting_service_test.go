package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/SscSPs/ledger_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(acc domain.Account, opening, debit, credit string) domain.AccountActivity {
	return domain.AccountActivity{
		Account:       acc,
		OpeningAmount: dec(opening),
		PeriodDebit:   dec(debit),
		PeriodCredit:  dec(credit),
	}
}

func TestBuildTrialBalance(t *testing.T) {
	accounts := testAccounts()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	report, err := services.BuildTrialBalance(testWorkplaceID, start, asOf, []domain.AccountActivity{
		activity(accounts["acc-sales"], "900", "0", "500"),
		activity(accounts["acc-cash"], "1000", "500", "1200"),
		activity(accounts["acc-rent"], "300", "1200", "0"),
		activity(accounts["acc-ap"], "0", "0", "0"),
	})
	require.NoError(t, err)

	require.Len(t, report.Categories, 5)
	names := make([]string, len(report.Categories))
	for i, c := range report.Categories {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Assets", "Liabilities", "Equity", "Revenue", "Expenses"}, names)

	cash := report.Categories[0].Rows[0]
	assert.True(t, cash.BeginningBalance.Equal(dec("1000")))
	assert.True(t, cash.EndingBalance.Equal(dec("300")))

	// Revenue and expense restart every period regardless of earlier postings.
	sales := report.Categories[3].Rows[0]
	assert.True(t, sales.BeginningBalance.IsZero())
	assert.True(t, sales.EndingBalance.Equal(dec("500")))
	rent := report.Categories[4].Rows[0]
	assert.True(t, rent.BeginningBalance.IsZero())
	assert.True(t, rent.EndingBalance.Equal(dec("1200")))

	assert.Empty(t, report.Categories[2].Rows)
	assert.NotNil(t, report.Categories[2].Rows)
	assert.True(t, report.Total.Debit.Equal(dec("1700")))
	assert.True(t, report.Total.Credit.Equal(dec("1700")))
}

func TestBuildTrialBalance_RowsSortedByCode(t *testing.T) {
	a := domain.Account{AccountID: "b", Code: "1100", AccountType: domain.Asset, IsActive: true}
	b := domain.Account{AccountID: "a", Code: "1010", AccountType: domain.Asset, IsActive: true}

	report, err := services.BuildTrialBalance(testWorkplaceID, time.Time{}, time.Time{}, []domain.AccountActivity{
		activity(a, "0", "10", "0"),
		activity(b, "0", "0", "10"),
	})
	require.NoError(t, err)

	assert.Equal(t, "1010", report.Categories[0].Rows[0].Code)
	assert.Equal(t, "1100", report.Categories[0].Rows[1].Code)
	assert.True(t, report.Categories[0].Subtotal.EndingBalance.IsZero())
}

func TestBuildTrialBalance_Mismatch(t *testing.T) {
	accounts := testAccounts()

	_, err := services.BuildTrialBalance(testWorkplaceID, time.Time{}, time.Time{}, []domain.AccountActivity{
		activity(accounts["acc-cash"], "0", "500", "0"),
		activity(accounts["acc-sales"], "0", "0", "450"),
	})

	var mismatch *apperrors.TrialBalanceMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.True(t, mismatch.TotalDebit.Equal(decimal.NewFromInt(500)))
	assert.ErrorIs(t, err, apperrors.ErrInvariantViolation)
}

func TestReportingService_TrialBalanceDefaultsPeriodStart(t *testing.T) {
	repo := new(MockReportingRepository)
	svc := services.NewReportingService(repo)
	asOf := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.On("GetAccountActivity", context.Background(), testWorkplaceID, jan1, asOf).
		Return([]domain.AccountActivity{}, nil).Once()

	report, err := svc.TrialBalance(context.Background(), testWorkplaceID, nil, asOf, "user-1")

	require.NoError(t, err)
	assert.Equal(t, jan1, report.PeriodStart)
	repo.AssertExpectations(t)
}

func TestReportingService_PeriodStartAfterAsOf(t *testing.T) {
	svc := services.NewReportingService(new(MockReportingRepository))
	asOf := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	start := asOf.AddDate(0, 0, 1)

	_, err := svc.TrialBalance(context.Background(), testWorkplaceID, &start, asOf, "user-1")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReportingService_Forbidden(t *testing.T) {
	auth := new(MockWorkplaceAuthorizer)
	auth.On("AuthorizeUserAction", context.Background(), "outsider", testWorkplaceID, domain.RoleReadOnly).
		Return(apperrors.ErrForbidden)
	svc := services.NewReportingService(new(MockReportingRepository), services.WithReportingWorkplaceAuthorizer(auth))

	_, err := svc.TrialBalance(context.Background(), testWorkplaceID, nil, time.Now().UTC(), "outsider")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
