package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/SscSPs/ledger_backend/internal/core/services"
	"github.com/SscSPs/ledger_backend/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BatchImportServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRegistry
	mockJournal     *MockJournalWriter
	service         *services.BatchImportService
	ctx             context.Context
	byCode          map[string]domain.Account
}

func (suite *BatchImportServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRegistry)
	suite.mockJournal = new(MockJournalWriter)
	suite.ctx = context.Background()

	suite.byCode = make(map[string]domain.Account)
	for _, acc := range testAccounts() {
		if acc.WorkplaceID == testWorkplaceID {
			suite.byCode[acc.Code] = acc
		}
	}

	svc, err := services.NewBatchImportService(suite.mockAccountRepo, suite.mockJournal, services.BatchImportConfig{Workers: 2})
	suite.Require().NoError(err)
	suite.service = svc
}

func (suite *BatchImportServiceTestSuite) TearDownTest() {
	suite.service.Release()
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockJournal.AssertExpectations(suite.T())
}

func TestBatchImportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BatchImportServiceTestSuite))
}

func (suite *BatchImportServiceTestSuite) expectCodes(codes ...string) {
	suite.mockAccountRepo.On("FindAccountsByCodes", suite.ctx, testWorkplaceID, codes).Return(suite.byCode, nil).Once()
}

func row(ref, date, code, debit, credit string) domain.ImportRow {
	return domain.ImportRow{Reference: ref, Date: date, AccountCode: code, DebitAmount: debit, CreditAmount: credit}
}

func (suite *BatchImportServiceTestSuite) TestValidateBatch_AllValid() {
	rows := []domain.ImportRow{
		row("JE-1", "2024-03-01", "1000", "500.00", ""),
		row("JE-2", "2024-03-02", "5000", "1200", ""),
		row("JE-1", "2024-03-01", "4000", "", "500.00"),
		row("JE-2", "2024-03-02", "1000", "", "1200"),
	}
	suite.expectCodes("1000", "5000", "4000")

	result, err := suite.service.ValidateBatch(suite.ctx, testWorkplaceID, rows, "user-1")

	suite.Require().NoError(err)
	suite.Empty(result.Errors)
	suite.Require().Len(result.ValidatedEntries, 2)
	first := result.ValidatedEntries[0]
	suite.Equal("JE-1", first.Reference)
	suite.Equal(domain.StatusDraft, first.Status)
	suite.Require().Len(first.Lines, 2)
	suite.Equal("acc-cash", first.Lines[0].AccountID)
	suite.Equal(2, first.Lines[1].LineNumber)
}

// A group with one bad row is dropped entirely; the other groups still validate.
func (suite *BatchImportServiceTestSuite) TestValidateBatch_UnknownCodeRejectsWholeGroup() {
	rows := []domain.ImportRow{
		row("JE-1", "2024-03-01", "1000", "500.00", ""),
		row("JE-1", "2024-03-01", "9999", "", "500.00"),
		row("JE-2", "2024-03-02", "5000", "75", ""),
		row("JE-2", "2024-03-02", "1000", "", "75"),
	}
	suite.expectCodes("1000", "9999", "5000")

	result, err := suite.service.ValidateBatch(suite.ctx, testWorkplaceID, rows, "user-1")

	suite.Require().NoError(err)
	suite.Equal([]domain.RowError{{Row: 2, Message: "InvalidAccount(2, 9999)"}}, result.Errors)
	suite.Require().Len(result.ValidatedEntries, 1)
	suite.Equal("JE-2", result.ValidatedEntries[0].Reference)
}

func (suite *BatchImportServiceTestSuite) TestValidateBatch_UnbalancedReportedOnFirstRow() {
	rows := []domain.ImportRow{
		row("JE-9", "2024-03-01", "1000", "500", ""),
		row("JE-9", "2024-03-01", "4000", "", "450"),
	}
	suite.expectCodes("1000", "4000")

	result, err := suite.service.ValidateBatch(suite.ctx, testWorkplaceID, rows, "user-1")

	suite.Require().NoError(err)
	suite.Empty(result.ValidatedEntries)
	suite.Equal([]domain.RowError{{Row: 1, Message: "UnbalancedEntry(500, 450)"}}, result.Errors)
}

func (suite *BatchImportServiceTestSuite) TestValidateBatch_ShapeErrors() {
	rows := []domain.ImportRow{
		row("JE-3", "03/01/2024", "1000", "10", ""),
		row("JE-3", "2024-03-01", "4000", "", "ten"),
		row("", "2024-03-01", "1000", "10", ""),
	}
	suite.expectCodes("1000", "4000")

	result, err := suite.service.ValidateBatch(suite.ctx, testWorkplaceID, rows, "user-1")

	suite.Require().NoError(err)
	suite.Empty(result.ValidatedEntries)
	suite.Equal([]domain.RowError{
		{Row: 1, Message: `date: "03/01/2024" is not a YYYY-MM-DD date`},
		{Row: 2, Message: `creditAmount: "ten" is not a number`},
		{Row: 3, Message: "reference: is required"},
	}, result.Errors)
}

func (suite *BatchImportServiceTestSuite) TestImportBatch_CreatesDraftsForValidGroups() {
	rows := []domain.ImportRow{
		row("JE-1", "2024-03-01", "1000", "500.00", ""),
		row("JE-1", "2024-03-01", "4000", "", "500.00"),
		row("JE-2", "2024-03-02", "1000", "1", ""),
	}
	suite.expectCodes("1000", "4000")
	created := &domain.JournalEntry{EntryID: "new-1", Reference: "JE-1", Status: domain.StatusDraft}
	suite.mockJournal.On("CreateDraft", suite.ctx, testWorkplaceID, mock.MatchedBy(func(req dto.JournalEntryRequest) bool {
		return req.Reference == "JE-1" && req.Date == "2024-03-01" && len(req.Lines) == 2 && req.Lines[0].AccountID == "acc-cash"
	}), "user-1").Return(created, nil).Once()

	result, err := suite.service.ImportBatch(suite.ctx, testWorkplaceID, rows, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(result.ValidatedEntries, 1)
	suite.Equal("new-1", result.ValidatedEntries[0].EntryID)
	suite.Require().Len(result.Errors, 1)
	suite.Equal(3, result.Errors[0].Row)
}

func (suite *BatchImportServiceTestSuite) TestImportBatch_ForbiddenAborts() {
	rows := []domain.ImportRow{
		row("JE-1", "2024-03-01", "1000", "5", ""),
		row("JE-1", "2024-03-01", "4000", "", "5"),
	}
	suite.expectCodes("1000", "4000")
	suite.mockJournal.On("CreateDraft", suite.ctx, testWorkplaceID, mock.Anything, "user-1").
		Return(nil, apperrors.NewAuthorizationDenied("edit", apperrors.ErrForbidden)).Once()

	_, err := suite.service.ImportBatch(suite.ctx, testWorkplaceID, rows, "user-1")

	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *BatchImportServiceTestSuite) TestValidateBatch_RegistryFailure() {
	suite.mockAccountRepo.On("FindAccountsByCodes", suite.ctx, testWorkplaceID, []string{"1000"}).
		Return(nil, errors.New("db down")).Once()

	_, err := suite.service.ValidateBatch(suite.ctx, testWorkplaceID, []domain.ImportRow{row("JE", "2024-03-01", "1000", "1", "")}, "user-1")

	suite.Error(err)
}
