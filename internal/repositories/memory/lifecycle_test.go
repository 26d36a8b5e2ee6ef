package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/core/services"
	"github.com/SscSPs/ledger_backend/internal/dto"
	"github.com/SscSPs/ledger_backend/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	workplaceID = "wp-1"
	clerk       = "clerk"
	controller  = "controller"
)

type LifecycleTestSuite struct {
	suite.Suite
	store     *memory.Store
	journal   portssvc.JournalSvcFacade
	reporting portssvc.ReportingService
	ctx       context.Context
}

func (suite *LifecycleTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.NewStore()
	for _, a := range []domain.Account{
		{AccountID: "acc-cash", WorkplaceID: workplaceID, Code: "1000", Name: "Cash", AccountType: domain.Asset, IsActive: true},
		{AccountID: "acc-bank", WorkplaceID: workplaceID, Code: "1010", Name: "Bank", AccountType: domain.Asset, IsActive: true},
		{AccountID: "acc-ap", WorkplaceID: workplaceID, Code: "2000", Name: "Accounts Payable", AccountType: domain.Liability, IsActive: true},
		{AccountID: "acc-sales", WorkplaceID: workplaceID, Code: "4000", Name: "Sales", AccountType: domain.Revenue, IsActive: true},
		{AccountID: "acc-rent", WorkplaceID: workplaceID, Code: "5000", Name: "Rent", AccountType: domain.Expense, IsActive: true},
	} {
		suite.store.PutAccount(a)
	}
	suite.store.PutMember(clerk, workplaceID, domain.RoleMember)
	suite.store.PutMember(controller, workplaceID, domain.RoleAdmin)

	repos := suite.store.RepositoryProvider()
	authorizer := services.NewWorkplaceAuthorizer(repos.WorkplaceRepo)
	poster := services.NewLedgerPoster(repos.LedgerRepo, repos.AccountRepo)
	suite.journal = services.NewJournalService(repos.JournalRepo, repos.AccountRepo, repos.LedgerRepo, poster,
		services.WithJournalWorkplaceAuthorizer(authorizer))
	suite.reporting = services.NewReportingService(repos.ReportingRepo,
		services.WithReportingWorkplaceAuthorizer(authorizer))
}

func TestLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(LifecycleTestSuite))
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func (suite *LifecycleTestSuite) draft(ref string, debitCode, creditCode, debit, credit string) *domain.JournalEntry {
	entry, err := suite.journal.CreateDraft(suite.ctx, workplaceID, dto.JournalEntryRequest{
		Reference: ref,
		Date:      "2024-03-01",
		Lines: []dto.JournalEntryLineRequest{
			{AccountCode: debitCode, Debit: amount(debit)},
			{AccountCode: creditCode, Credit: amount(credit)},
		},
	}, clerk)
	suite.Require().NoError(err)
	return entry
}

func (suite *LifecycleTestSuite) approved(ref string, debitCode, creditCode, value string) *domain.JournalEntry {
	entry := suite.draft(ref, debitCode, creditCode, value, value)
	_, err := suite.journal.Submit(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)
	entry, err = suite.journal.Approve(suite.ctx, workplaceID, entry.EntryID, controller)
	suite.Require().NoError(err)
	return entry
}

func (suite *LifecycleTestSuite) balance(accountID string) decimal.Decimal {
	balances, err := suite.store.FindBalances(suite.ctx, workplaceID, []string{accountID})
	suite.Require().NoError(err)
	return balances[accountID].Balance
}

func (suite *LifecycleTestSuite) trialBalance() *domain.TrialBalanceReport {
	report, err := suite.reporting.TrialBalance(suite.ctx, workplaceID, nil, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), controller)
	suite.Require().NoError(err)
	return report
}

func (suite *LifecycleTestSuite) TestPostBalancedEntry() {
	entry := suite.approved("INV-1", "1000", "4000", "500.00")

	posted, err := suite.journal.Post(suite.ctx, workplaceID, entry.EntryID, controller)
	suite.Require().NoError(err)

	suite.Equal(domain.StatusPosted, posted.Status)
	suite.Equal(controller, posted.Audit.PostedBy)
	suite.Equal(clerk, posted.Audit.RequestedBy)
	suite.Equal(controller, posted.Audit.ApprovedBy)
	suite.True(suite.balance("acc-cash").Equal(amount("500")))
	suite.True(suite.balance("acc-sales").Equal(amount("500")))

	postings, err := suite.journal.ListPostings(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)
	suite.Len(postings, 2)

	report := suite.trialBalance()
	suite.True(report.Total.Debit.Equal(amount("500")))
	suite.True(report.Total.Credit.Equal(amount("500")))

	outbox := suite.store.OutboxMessages()
	suite.Require().Len(outbox, 1)
	suite.Equal(domain.EventEntryPosted, outbox[0].EventType)
	suite.Equal(entry.EntryID, outbox[0].AggregateID)
}

func (suite *LifecycleTestSuite) TestResidualsWithinToleranceDoNotAccumulate() {
	for i := 1; i <= 3; i++ {
		entry := suite.draft(fmt.Sprintf("ROUND-%d", i), "1000", "4000", "100.0006", "100")
		_, err := suite.journal.Submit(suite.ctx, workplaceID, entry.EntryID, clerk)
		suite.Require().NoError(err)
		_, err = suite.journal.Approve(suite.ctx, workplaceID, entry.EntryID, controller)
		suite.Require().NoError(err)
		_, err = suite.journal.Post(suite.ctx, workplaceID, entry.EntryID, controller)
		suite.Require().NoError(err)
	}

	report := suite.trialBalance()

	suite.True(report.Total.Debit.Equal(report.Total.Credit),
		"debit %s credit %s", report.Total.Debit, report.Total.Credit)
	suite.True(suite.balance("acc-cash").Equal(amount("300.0018")))
	suite.True(suite.balance("acc-sales").Equal(amount("300.0018")))
}

func (suite *LifecycleTestSuite) TestUnbalancedSubmitStaysDraft() {
	entry := suite.draft("INV-2", "1000", "4000", "500", "450")

	_, err := suite.journal.Submit(suite.ctx, workplaceID, entry.EntryID, clerk)

	var verr *apperrors.ValidationError
	suite.Require().True(errors.As(err, &verr))
	suite.Require().Len(verr.Violations, 1)
	suite.Equal("UnbalancedEntry(500, 450)", verr.Violations[0].String())

	stored, err := suite.journal.GetEntry(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, stored.Status)
	suite.Equal(int64(1), stored.Version)
}

func (suite *LifecycleTestSuite) TestVoidRestoresBalances() {
	entry := suite.approved("PAY-1", "5000", "1010", "1200")
	_, err := suite.journal.Post(suite.ctx, workplaceID, entry.EntryID, controller)
	suite.Require().NoError(err)
	suite.True(suite.balance("acc-bank").Equal(amount("-1200")))

	voided, err := suite.journal.Void(suite.ctx, workplaceID, entry.EntryID, "duplicate payment", controller)
	suite.Require().NoError(err)

	suite.Equal(domain.StatusVoided, voided.Status)
	suite.Equal("duplicate payment", voided.Audit.VoidReason)
	suite.True(suite.balance("acc-bank").IsZero())
	suite.True(suite.balance("acc-rent").IsZero())

	postings, err := suite.journal.ListPostings(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)
	suite.Require().Len(postings, 4)
	net := decimal.Zero
	for _, p := range postings {
		net = net.Add(p.Amount)
		suite.Equal("2024-03-01", p.PostingDate.Format(domain.DateLayout))
	}
	suite.True(net.IsZero())

	report := suite.trialBalance()
	suite.True(report.Total.Debit.Equal(report.Total.Credit))

	_, err = suite.journal.Void(suite.ctx, workplaceID, entry.EntryID, "again", controller)
	suite.EqualError(err, "InvalidTransition(VOIDED, void)")

	outbox := suite.store.OutboxMessages()
	suite.Require().Len(outbox, 2)
	suite.Equal(domain.EventEntryVoided, outbox[1].EventType)
}

func (suite *LifecycleTestSuite) TestConcurrentApproveHasOneWinner() {
	entry := suite.draft("INV-3", "1000", "4000", "10", "10")
	_, err := suite.journal.Submit(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = suite.journal.Approve(suite.ctx, workplaceID, entry.EntryID, controller)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		suite.ErrorIs(err, apperrors.ErrConflict)
	}
	suite.Equal(1, winners)

	stored, err := suite.journal.GetEntry(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, stored.Status)
	suite.Equal(int64(3), stored.Version)
}

func (suite *LifecycleTestSuite) TestPostsOnDisjointAccountsDoNotWait() {
	slow := suite.approved("SLOW-1", "1000", "4000", "10")
	fast := suite.approved("FAST-1", "5000", "2000", "20")
	entered := make(chan struct{})
	release := make(chan struct{})
	suite.store.SetApplyFault(func(b domain.PostingBatch) error {
		if b.Change.EntryID == slow.EntryID {
			close(entered)
			<-release
		}
		return nil
	})

	slowDone := make(chan error, 1)
	go func() {
		_, err := suite.journal.Post(suite.ctx, workplaceID, slow.EntryID, controller)
		slowDone <- err
	}()
	<-entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := suite.journal.Post(suite.ctx, workplaceID, fast.EntryID, controller)
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		suite.NoError(err)
	case <-time.After(2 * time.Second):
		suite.Fail("post on rent/payables waited for the post holding cash/sales")
	}
	suite.True(suite.balance("acc-rent").Equal(amount("20")))
	suite.True(suite.balance("acc-cash").IsZero())

	close(release)
	suite.Require().NoError(<-slowDone)
	suite.True(suite.balance("acc-cash").Equal(amount("10")))
}

func (suite *LifecycleTestSuite) TestConcurrentPostsOnSharedAccounts() {
	const entries = 20
	ids := make([]string, entries)
	for i := range ids {
		debit, credit := "1000", "4000"
		if i%2 == 1 {
			debit, credit = "4000", "1000"
		}
		ids[i] = suite.approved(fmt.Sprintf("INV-%02d", i), debit, credit, "25").EntryID
	}

	var wg sync.WaitGroup
	errs := make([]error, entries)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = suite.journal.Post(suite.ctx, workplaceID, id, controller)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		suite.NoError(err)
	}
	// Ten debits and ten credits of 25 against cash cancel out; sales mirrors it.
	suite.True(suite.balance("acc-cash").IsZero())
	suite.True(suite.balance("acc-sales").IsZero())
	suite.Len(suite.store.OutboxMessages(), entries)

	report := suite.trialBalance()
	suite.True(report.Total.Debit.Equal(amount("500")))
	suite.True(report.Total.Credit.Equal(amount("500")))
}

func (suite *LifecycleTestSuite) TestFailedPostCanBeRetried() {
	entry := suite.approved("INV-4", "1000", "4000", "75")
	suite.store.SetApplyFault(func(domain.PostingBatch) error { return errors.New("disk full") })

	_, err := suite.journal.Post(suite.ctx, workplaceID, entry.EntryID, controller)
	suite.ErrorIs(err, apperrors.ErrRetryable)

	stored, err := suite.journal.GetEntry(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, stored.Status)
	suite.True(suite.balance("acc-cash").IsZero())
	suite.Empty(suite.store.OutboxMessages())

	suite.store.SetApplyFault(nil)
	posted, err := suite.journal.Post(suite.ctx, workplaceID, entry.EntryID, controller)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, posted.Status)
	suite.True(suite.balance("acc-cash").Equal(amount("75")))
}

func (suite *LifecycleTestSuite) TestRejectedEntryIsDuplicatedNotReopened() {
	entry := suite.draft("INV-5", "1000", "4000", "40", "40")
	_, err := suite.journal.Submit(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)
	rejected, err := suite.journal.Reject(suite.ctx, workplaceID, entry.EntryID, "wrong customer", controller)
	suite.Require().NoError(err)
	suite.Equal("wrong customer", rejected.Audit.RejectionReason)

	_, err = suite.journal.Submit(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.EqualError(err, "InvalidTransition(REJECTED, submit)")
	_, err = suite.journal.UpdateDraft(suite.ctx, workplaceID, entry.EntryID, dto.JournalEntryRequest{Reference: "INV-5", Date: "2024-03-01"}, clerk)
	suite.ErrorIs(err, apperrors.ErrConflict)

	dup, err := suite.journal.Duplicate(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, dup.Status)
	suite.Equal(entry.EntryID, *dup.DuplicatedFromID)

	_, err = suite.journal.Submit(suite.ctx, workplaceID, dup.EntryID, clerk)
	suite.NoError(err)

	source, err := suite.journal.GetEntry(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusRejected, source.Status)
}

func (suite *LifecycleTestSuite) TestMemberCannotApprove() {
	entry := suite.draft("INV-6", "1000", "4000", "5", "5")
	_, err := suite.journal.Submit(suite.ctx, workplaceID, entry.EntryID, clerk)
	suite.Require().NoError(err)

	_, err = suite.journal.Approve(suite.ctx, workplaceID, entry.EntryID, clerk)

	var terr *apperrors.TransitionError
	suite.Require().True(errors.As(err, &terr))
	suite.Equal(apperrors.AuthorizationDenied, terr.Kind)

	_, err = suite.journal.GetEntry(suite.ctx, workplaceID, entry.EntryID, "stranger")
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LifecycleTestSuite) TestListEntriesPages() {
	for i := 0; i < 5; i++ {
		suite.draft(fmt.Sprintf("D-%d", i), "1000", "4000", "1", "1")
	}

	seen := map[string]bool{}
	params := dto.ListJournalEntriesParams{Limit: 2}
	pages := 0
	for {
		resp, err := suite.journal.ListEntries(suite.ctx, workplaceID, clerk, params)
		suite.Require().NoError(err)
		pages++
		for _, e := range resp.Entries {
			suite.False(seen[e.EntryID], "entry listed twice")
			seen[e.EntryID] = true
		}
		if resp.NextToken == nil {
			break
		}
		params.NextToken = *resp.NextToken
	}
	suite.Equal(3, pages)
	suite.Len(seen, 5)
}

func TestProcessPendingDeliversInOrder(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(domain.Account{AccountID: "a", WorkplaceID: workplaceID, Code: "1", AccountType: domain.Asset, IsActive: true})
	store.PutAccount(domain.Account{AccountID: "b", WorkplaceID: workplaceID, Code: "2", AccountType: domain.Revenue, IsActive: true})

	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2"} {
		require.NoError(t, store.CreateEntry(context.Background(), domain.JournalEntry{
			EntryID: id, WorkplaceID: workplaceID, Status: domain.StatusApproved, Version: 1,
		}))
		require.NoError(t, store.ApplyPostings(context.Background(), domain.PostingBatch{
			WorkplaceID: workplaceID,
			Change:      domain.StatusChange{EntryID: id, From: domain.StatusApproved, To: domain.StatusPosted, ExpectedVersion: 1, At: at},
			Postings: []domain.LedgerPosting{
				{AccountID: "a", WorkplaceID: workplaceID, Amount: amount("1")},
				{AccountID: "b", WorkplaceID: workplaceID, Amount: amount("1")},
			},
			Event: &domain.OutboxMessage{ID: fmt.Sprintf("01H%d", i), AggregateID: id, Status: domain.OutboxPending},
		}))
	}

	var got []string
	fail := true
	handler := func(_ context.Context, m domain.OutboxMessage) error {
		if m.AggregateID == "e2" && fail {
			fail = false
			return errors.New("broker unavailable")
		}
		got = append(got, m.AggregateID)
		return nil
	}

	n, err := store.ProcessPending(context.Background(), 10, 3, handler)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.ProcessPending(context.Background(), 10, 3, handler)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"e1", "e2"}, got)

	for _, m := range store.OutboxMessages() {
		assert.Equal(t, domain.OutboxProcessed, m.Status)
	}
	assert.Equal(t, 2, store.OutboxMessages()[1].Attempts)
}
