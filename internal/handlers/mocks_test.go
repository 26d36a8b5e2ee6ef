package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/SscSPs/ledger_backend/internal/dto"
	"github.com/stretchr/testify/mock"
)

type MockJournalService struct {
	mock.Mock
}

func entryResult(args mock.Arguments) (*domain.JournalEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetEntry(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	return entryResult(m.Called(ctx, workplaceID, entryID, userID))
}

func (m *MockJournalService) ListEntries(ctx context.Context, workplaceID, userID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	args := m.Called(ctx, workplaceID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalEntriesResponse), args.Error(1)
}

func (m *MockJournalService) ListPostings(ctx context.Context, workplaceID, entryID, userID string) ([]domain.LedgerPosting, error) {
	args := m.Called(ctx, workplaceID, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerPosting), args.Error(1)
}

func (m *MockJournalService) CreateDraft(ctx context.Context, workplaceID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	return entryResult(m.Called(ctx, workplaceID, req, userID))
}

func (m *MockJournalService) UpdateDraft(ctx context.Context, workplaceID, entryID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	return entryResult(m.Called(ctx, workplaceID, entryID, req, userID))
}

func (m *MockJournalService) Submit(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	return entryResult(m.Called(ctx, workplaceID, entryID, userID))
}

func (m *MockJournalService) Approve(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	return entryResult(m.Called(ctx, workplaceID, entryID, userID))
}

func (m *MockJournalService) Reject(ctx context.Context, workplaceID, entryID, reason, userID string) (*domain.JournalEntry, error) {
	return entryResult(m.Called(ctx, workplaceID, entryID, reason, userID))
}

func (m *MockJournalService) Post(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	return entryResult(m.Called(ctx, workplaceID, entryID, userID))
}

func (m *MockJournalService) Void(ctx context.Context, workplaceID, entryID, reason, userID string) (*domain.JournalEntry, error) {
	return entryResult(m.Called(ctx, workplaceID, entryID, reason, userID))
}

func (m *MockJournalService) Duplicate(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	return entryResult(m.Called(ctx, workplaceID, entryID, userID))
}

type MockBatchImportService struct {
	mock.Mock
}

func (m *MockBatchImportService) ValidateBatch(ctx context.Context, workplaceID string, rows []domain.ImportRow, userID string) (*domain.BatchImportResult, error) {
	args := m.Called(ctx, workplaceID, rows, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchImportResult), args.Error(1)
}

func (m *MockBatchImportService) ImportBatch(ctx context.Context, workplaceID string, rows []domain.ImportRow, userID string) (*domain.BatchImportResult, error) {
	args := m.Called(ctx, workplaceID, rows, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchImportResult), args.Error(1)
}

type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) TrialBalance(ctx context.Context, workplaceID string, periodStart *time.Time, asOf time.Time, userID string) (*domain.TrialBalanceReport, error) {
	args := m.Called(ctx, workplaceID, periodStart, asOf, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalanceReport), args.Error(1)
}
