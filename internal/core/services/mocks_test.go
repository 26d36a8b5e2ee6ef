package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, workplaceID, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, workplaceID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the service cannot mutate the fixture.
	e := *args.Get(0).(*domain.JournalEntry)
	e.Lines = append([]domain.JournalEntryLine(nil), e.Lines...)
	return &e, args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, workplaceID string, filter portsrepo.EntryFilter) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, workplaceID, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.JournalEntry), next, args.Error(2)
}

func (m *MockJournalRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournalRepository) ReplaceDraft(ctx context.Context, entry domain.JournalEntry, expectedVersion int64) error {
	return m.Called(ctx, entry, expectedVersion).Error(0)
}

func (m *MockJournalRepository) TransitionStatus(ctx context.Context, workplaceID string, change domain.StatusChange) error {
	return m.Called(ctx, workplaceID, change).Error(0)
}

// --- Mock AccountRegistry ---
type MockAccountRegistry struct {
	mock.Mock
}

var _ portsrepo.AccountRegistry = (*MockAccountRegistry)(nil)

func (m *MockAccountRegistry) FindAccountsByIDs(ctx context.Context, workplaceID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, workplaceID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRegistry) FindAccountsByCodes(ctx context.Context, workplaceID string, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, workplaceID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRegistry) ListAccounts(ctx context.Context, workplaceID string) ([]domain.Account, error) {
	args := m.Called(ctx, workplaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) ApplyPostings(ctx context.Context, batch domain.PostingBatch) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *MockLedgerRepository) ListPostingsByEntry(ctx context.Context, workplaceID, entryID string) ([]domain.LedgerPosting, error) {
	args := m.Called(ctx, workplaceID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerPosting), args.Error(1)
}

func (m *MockLedgerRepository) FindBalances(ctx context.Context, workplaceID string, accountIDs []string) (map[string]domain.AccountBalance, error) {
	args := m.Called(ctx, workplaceID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.AccountBalance), args.Error(1)
}

// --- Mock LedgerPoster ---
type MockLedgerPoster struct {
	mock.Mock
}

var _ portssvc.LedgerPosterSvc = (*MockLedgerPoster)(nil)

func (m *MockLedgerPoster) Post(ctx context.Context, entry domain.JournalEntry, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerPoster) Void(ctx context.Context, entry domain.JournalEntry, reason, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Mock WorkplaceAuthorizer ---
type MockWorkplaceAuthorizer struct {
	mock.Mock
}

var _ portssvc.WorkplaceAuthorizerSvc = (*MockWorkplaceAuthorizer)(nil)

func (m *MockWorkplaceAuthorizer) AuthorizeUserAction(ctx context.Context, userID, workplaceID string, requiredRole domain.UserWorkplaceRole) error {
	return m.Called(ctx, userID, workplaceID, requiredRole).Error(0)
}

// --- Mock WorkplaceMembershipReader ---
type MockMembershipReader struct {
	mock.Mock
}

var _ portsrepo.WorkplaceMembershipReader = (*MockMembershipReader)(nil)

func (m *MockMembershipReader) FindUserWorkplaceRole(ctx context.Context, userID, workplaceID string) (*domain.UserWorkplace, error) {
	args := m.Called(ctx, userID, workplaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserWorkplace), args.Error(1)
}

// --- Mock JournalWriter (as used by the batch importer) ---
type MockJournalWriter struct {
	mock.Mock
}

var _ portssvc.JournalWriterSvc = (*MockJournalWriter)(nil)

func (m *MockJournalWriter) CreateDraft(ctx context.Context, workplaceID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, workplaceID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalWriter) UpdateDraft(ctx context.Context, workplaceID, entryID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, workplaceID, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetAccountActivity(ctx context.Context, workplaceID string, periodStart, asOf time.Time) ([]domain.AccountActivity, error) {
	args := m.Called(ctx, workplaceID, periodStart, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountActivity), args.Error(1)
}
