// Package memory is an in-process implementation of the repository ports.
// It backs STORAGE_DRIVER=memory and the end-to-end tests of the service layer.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_backend/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

type memberKey struct {
	userID      string
	workplaceID string
}

// Store keeps every table in maps guarded by mu.
// ApplyPostings additionally takes one mutex per affected account, in ascending id order,
// and holds mu only to read and then publish.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	members  map[memberKey]domain.UserWorkplace
	entries  map[string]domain.JournalEntry
	postings []domain.LedgerPosting
	balances map[string]domain.AccountBalance
	outbox   []domain.OutboxMessage
	claimed  map[string]bool

	locksMu      sync.Mutex
	accountLocks map[string]*sync.Mutex

	applyFault func(domain.PostingBatch) error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		members:      make(map[memberKey]domain.UserWorkplace),
		entries:      make(map[string]domain.JournalEntry),
		balances:     make(map[string]domain.AccountBalance),
		claimed:      make(map[string]bool),
		accountLocks: make(map[string]*sync.Mutex),
	}
}

// RepositoryProvider exposes the store through the repository ports.
func (s *Store) RepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   s,
		JournalRepo:   s,
		LedgerRepo:    s,
		ReportingRepo: s,
		OutboxRepo:    s,
		WorkplaceRepo: s,
	}
}

var (
	_ portsrepo.AccountRegistry           = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade   = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade    = (*Store)(nil)
	_ portsrepo.ReportingRepository       = (*Store)(nil)
	_ portsrepo.OutboxRepository          = (*Store)(nil)
	_ portsrepo.WorkplaceMembershipReader = (*Store)(nil)
)

// PutAccount inserts or replaces an account.
func (s *Store) PutAccount(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.AccountID] = a
}

// PutMember grants a user a role in a workplace.
func (s *Store) PutMember(userID, workplaceID string, role domain.UserWorkplaceRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[memberKey{userID, workplaceID}] = domain.UserWorkplace{UserID: userID, WorkplaceID: workplaceID, Role: role}
}

// SetApplyFault makes ApplyPostings fail with fn's error, before anything is written, whenever fn
// returns non-nil. Passing nil clears it.
func (s *Store) SetApplyFault(fn func(domain.PostingBatch) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyFault = fn
}

// OutboxMessages returns a copy of every outbox message in id order.
func (s *Store) OutboxMessages() []domain.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OutboxMessage(nil), s.outbox...)
}

func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalEntryLine(nil), e.Lines...)
	if e.DuplicatedFromID != nil {
		id := *e.DuplicatedFromID
		e.DuplicatedFromID = &id
	}
	return e
}

// --- AccountRegistry ---

func (s *Store) FindAccountsByIDs(_ context.Context, workplaceID string, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if a, ok := s.accounts[id]; ok && a.WorkplaceID == workplaceID {
			result[id] = a
		}
	}
	return result, nil
}

func (s *Store) FindAccountsByCodes(_ context.Context, workplaceID string, codes []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(codes))
	for _, c := range codes {
		wanted[c] = true
	}
	result := make(map[string]domain.Account, len(codes))
	for _, a := range s.accounts {
		if a.WorkplaceID == workplaceID && wanted[a.Code] {
			result[a.Code] = a
		}
	}
	return result, nil
}

func (s *Store) ListAccounts(_ context.Context, workplaceID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Account{}
	for _, a := range s.accounts {
		if a.WorkplaceID == workplaceID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// --- WorkplaceMembershipReader ---

func (s *Store) FindUserWorkplaceRole(_ context.Context, userID, workplaceID string) (*domain.UserWorkplace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberKey{userID, workplaceID}]
	if !ok {
		return nil, fmt.Errorf("%w: user %s is not a member of workplace %s", apperrors.ErrNotFound, userID, workplaceID)
	}
	return &m, nil
}

// --- Journal entries ---

func (s *Store) CreateEntry(_ context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.EntryID]; ok {
		return fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
	}
	s.entries[entry.EntryID] = copyEntry(entry)
	return nil
}

func (s *Store) ReplaceDraft(_ context.Context, entry domain.JournalEntry, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.entries[entry.EntryID]
	if !ok || current.WorkplaceID != entry.WorkplaceID || current.Status != domain.StatusDraft || current.Version != expectedVersion {
		return &apperrors.ConcurrentModificationError{EntryID: entry.EntryID, Expected: domain.StatusDraft.String()}
	}
	s.entries[entry.EntryID] = copyEntry(entry)
	return nil
}

func (s *Store) TransitionStatus(_ context.Context, workplaceID string, change domain.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(workplaceID, change)
}

func (s *Store) transitionLocked(workplaceID string, change domain.StatusChange) error {
	current, ok := s.entries[change.EntryID]
	if !ok || current.WorkplaceID != workplaceID || current.Status != change.From || current.Version != change.ExpectedVersion {
		return &apperrors.ConcurrentModificationError{EntryID: change.EntryID, Expected: change.From.String()}
	}
	current.Apply(change)
	s.entries[change.EntryID] = current
	return nil
}

func (s *Store) FindEntryByID(_ context.Context, workplaceID, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok || e.WorkplaceID != workplaceID {
		return nil, apperrors.NewNotFoundError("journal entry " + entryID)
	}
	e = copyEntry(e)
	return &e, nil
}

// entryBefore orders entries newest first by (entry date, created at, id).
func entryBefore(a domain.JournalEntry, date, created time.Time, id string) bool {
	if !a.EntryDate.Equal(date) {
		return a.EntryDate.Before(date)
	}
	if !a.Audit.CreatedAt.Equal(created) {
		return a.Audit.CreatedAt.Before(created)
	}
	return a.EntryID < id
}

func (s *Store) ListEntries(_ context.Context, workplaceID string, filter portsrepo.EntryFilter) ([]domain.JournalEntry, *string, error) {
	s.mu.RLock()
	matched := []domain.JournalEntry{}
	for _, e := range s.entries {
		if e.WorkplaceID != workplaceID {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if c := filter.After; c != nil && !entryBefore(e, c.EntryDate, c.CreatedAt, c.EntryID) {
			continue
		}
		matched = append(matched, copyEntry(e))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a := matched[i]
		return entryBefore(matched[j], a.EntryDate, a.Audit.CreatedAt, a.EntryID)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	var next *string
	if len(matched) > limit {
		last := matched[limit-1]
		token := pagination.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.Audit.CreatedAt, EntryID: last.EntryID}.Encode()
		next = &token
		matched = matched[:limit]
	}
	return matched, next, nil
}

// --- Ledger ---

func (s *Store) accountLock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.accountLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.accountLocks[id] = l
	}
	return l
}

// ApplyPostings commits a post or void atomically: either every posting, balance update, status
// change and outbox message becomes visible, or none does.
// Balances of the affected accounts are only written while their account locks are held, so
// the new balances are computed outside mu and published together with the status change.
func (s *Store) ApplyPostings(_ context.Context, batch domain.PostingBatch) error {
	deltas := batch.BalanceDeltas()
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		l := s.accountLock(id)
		l.Lock()
		defer l.Unlock()
	}

	s.mu.RLock()
	fault := s.applyFault
	s.mu.RUnlock()
	if fault != nil {
		if err := fault(batch); err != nil {
			return err
		}
	}

	current, err := s.lockedBalances(batch.WorkplaceID, ids)
	if err != nil {
		return err
	}
	next := make(map[string]domain.AccountBalance, len(ids))
	for _, id := range ids {
		b := current[id]
		b.Balance = b.Balance.Add(deltas[id])
		b.LastPostedAt = batch.Change.At
		b.Version++
		next[id] = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Nothing below can fail once the status check passes.
	if err := s.transitionLocked(batch.WorkplaceID, batch.Change); err != nil {
		return err
	}
	s.postings = append(s.postings, batch.Postings...)
	for id, b := range next {
		s.balances[id] = b
	}
	if batch.Event != nil {
		s.outbox = append(s.outbox, *batch.Event)
		sort.SliceStable(s.outbox, func(i, j int) bool { return s.outbox[i].ID < s.outbox[j].ID })
	}
	return nil
}

// lockedBalances reads the balances of accounts whose locks the caller holds.
// Accounts never posted to start at zero.
func (s *Store) lockedBalances(workplaceID string, ids []string) (map[string]domain.AccountBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.AccountBalance, len(ids))
	for _, id := range ids {
		if a, ok := s.accounts[id]; !ok || a.WorkplaceID != workplaceID {
			return nil, fmt.Errorf("%w: account %s not found in workplace %s", apperrors.ErrNotFound, id, workplaceID)
		}
		b, ok := s.balances[id]
		if !ok {
			b = domain.AccountBalance{AccountID: id, WorkplaceID: workplaceID, Balance: decimal.Zero}
		}
		out[id] = b
	}
	return out, nil
}

func (s *Store) ListPostingsByEntry(_ context.Context, workplaceID, entryID string) ([]domain.LedgerPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.LedgerPosting{}
	for _, p := range s.postings {
		if p.WorkplaceID == workplaceID && p.EntryID == entryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) FindBalances(_ context.Context, workplaceID string, accountIDs []string) (map[string]domain.AccountBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]domain.AccountBalance, len(accountIDs))
	for _, id := range accountIDs {
		if b, ok := s.balances[id]; ok && b.WorkplaceID == workplaceID {
			result[id] = b
		}
	}
	return result, nil
}

// --- Reporting ---

func (s *Store) GetAccountActivity(_ context.Context, workplaceID string, periodStart, asOf time.Time) ([]domain.AccountActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type agg struct {
		activity domain.AccountActivity
		posted   bool
	}
	byAccount := make(map[string]*agg)
	for _, a := range s.accounts {
		if a.WorkplaceID == workplaceID {
			byAccount[a.AccountID] = &agg{activity: domain.AccountActivity{Account: a}}
		}
	}
	for _, p := range s.postings {
		g, ok := byAccount[p.AccountID]
		if !ok || p.PostingDate.After(asOf) {
			continue
		}
		g.posted = true
		if p.PostingDate.Before(periodStart) {
			g.activity.OpeningAmount = g.activity.OpeningAmount.Add(p.Amount)
			continue
		}
		g.activity.PeriodDebit = g.activity.PeriodDebit.Add(p.Debit)
		g.activity.PeriodCredit = g.activity.PeriodCredit.Add(p.Credit)
	}

	out := []domain.AccountActivity{}
	for _, g := range byAccount {
		if g.activity.Account.IsActive || g.posted {
			out = append(out, g.activity)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account.Code < out[j].Account.Code })
	return out, nil
}

// --- Outbox ---

// ProcessPending delivers pending messages without holding the store lock during fn.
func (s *Store) ProcessPending(ctx context.Context, limit, maxAttempts int, fn portsrepo.OutboxHandler) (int, error) {
	s.mu.Lock()
	var batch []domain.OutboxMessage
	for _, m := range s.outbox {
		if len(batch) == limit {
			break
		}
		if m.Status == domain.OutboxPending && !s.claimed[m.ID] {
			s.claimed[m.ID] = true
			batch = append(batch, m)
		}
	}
	s.mu.Unlock()

	delivered := 0
	for _, m := range batch {
		err := fn(ctx, m)

		s.mu.Lock()
		delete(s.claimed, m.ID)
		for i := range s.outbox {
			if s.outbox[i].ID != m.ID {
				continue
			}
			s.outbox[i].Attempts++
			switch {
			case err == nil:
				now := time.Now().UTC()
				s.outbox[i].Status = domain.OutboxProcessed
				s.outbox[i].ProcessedAt = &now
				delivered++
			case s.outbox[i].Attempts >= maxAttempts:
				s.outbox[i].Status = domain.OutboxFailed
			}
		}
		s.mu.Unlock()
	}
	return delivered, nil
}
