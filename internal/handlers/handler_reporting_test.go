package handlers_test

import (
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const reportsPath = "/api/v1/workplaces/" + testWorkplaceID + "/reports"

func sampleTrialBalance() *domain.TrialBalanceReport {
	cash := domain.TrialBalanceRow{
		AccountID: "acc-cash", Code: "1000", Name: "Cash", AccountType: domain.Asset,
		BeginningBalance: decimal.NewFromInt(100), PeriodDebit: decimal.NewFromInt(500),
		PeriodCredit: decimal.Zero, EndingBalance: decimal.NewFromInt(600),
	}
	sales := domain.TrialBalanceRow{
		AccountID: "acc-sales", Code: "4000", Name: "Sales", AccountType: domain.Revenue,
		BeginningBalance: decimal.Zero, PeriodDebit: decimal.Zero,
		PeriodCredit: decimal.NewFromInt(500), EndingBalance: decimal.NewFromInt(500),
	}
	assets := domain.TrialBalanceCategory{Name: "Assets", AccountType: domain.Asset, Rows: []domain.TrialBalanceRow{cash}}
	assets.Subtotal = assets.Subtotal.Add(cash)
	revenue := domain.TrialBalanceCategory{Name: "Revenue", AccountType: domain.Revenue, Rows: []domain.TrialBalanceRow{sales}}
	revenue.Subtotal = revenue.Subtotal.Add(sales)

	return &domain.TrialBalanceReport{
		WorkplaceID: testWorkplaceID,
		PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AsOf:        time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Categories:  []domain.TrialBalanceCategory{assets, revenue},
		Total:       assets.Subtotal.Add(sales),
	}
}

var noPeriodStart = mock.MatchedBy(func(p *time.Time) bool { return p == nil })

func (suite *JournalHandlerTestSuite) TestTrialBalance_JSON() {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	suite.mockReportingService.On("TrialBalance", mock.AnythingOfType(ctxType), testWorkplaceID, noPeriodStart, asOf, testUserID).
		Return(sampleTrialBalance(), nil).Once()

	w := suite.do(http.MethodGet, reportsPath+"/trial-balance?asOf=2024-03-31", nil)

	suite.Equal(http.StatusOK, w.Code)
	resp := decodeBody(suite, w)
	suite.Equal("2024-01-01", resp["periodStart"])
	categories := resp["categories"].([]any)
	suite.Require().Len(categories, 2)
	suite.Equal("Assets", categories[0].(map[string]any)["category"])
}

func (suite *JournalHandlerTestSuite) TestTrialBalance_PeriodStartParsed() {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	suite.mockReportingService.On("TrialBalance", mock.AnythingOfType(ctxType), testWorkplaceID,
		mock.MatchedBy(func(p *time.Time) bool { return p != nil && p.Equal(start) }), asOf, testUserID).
		Return(sampleTrialBalance(), nil).Once()

	w := suite.do(http.MethodGet, reportsPath+"/trial-balance?asOf=2024-03-31&periodStart=2024-03-01", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *JournalHandlerTestSuite) TestTrialBalance_InvalidDate() {
	w := suite.do(http.MethodGet, reportsPath+"/trial-balance?asOf=31-03-2024", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *JournalHandlerTestSuite) TestTrialBalance_MismatchIs500() {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	suite.mockReportingService.On("TrialBalance", mock.AnythingOfType(ctxType), testWorkplaceID, noPeriodStart, asOf, testUserID).
		Return(nil, &apperrors.TrialBalanceMismatchError{TotalDebit: decimal.NewFromInt(10), TotalCredit: decimal.NewFromInt(9)}).Once()

	w := suite.do(http.MethodGet, reportsPath+"/trial-balance?asOf=2024-03-31", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("Ledger invariant violated", decodeBody(suite, w)["error"])
}

func (suite *JournalHandlerTestSuite) TestTrialBalance_CSV() {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	suite.mockReportingService.On("TrialBalance", mock.AnythingOfType(ctxType), testWorkplaceID, noPeriodStart, asOf, testUserID).
		Return(sampleTrialBalance(), nil).Once()

	w := suite.do(http.MethodGet, reportsPath+"/trial-balance.csv?asOf=2024-03-31", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	suite.Contains(w.Header().Get("Content-Disposition"), "trial-balance-2024-03-31.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	suite.Equal([]string{
		"Account Code,Account Name,Beginning Balance,Debit,Credit,Ending Balance",
		"1000,Cash,100.0000,500.0000,0.0000,600.0000",
		",Total Assets,100.0000,500.0000,0.0000,600.0000",
		"4000,Sales,0.0000,0.0000,500.0000,500.0000",
		",Total Revenue,0.0000,0.0000,500.0000,500.0000",
		",Total,100.0000,500.0000,500.0000,1100.0000",
	}, lines)
}
