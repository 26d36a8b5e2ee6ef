package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/dto"
	"github.com/SscSPs/ledger_backend/internal/utils/pagination"
)

const (
	defaultEntryPageSize = 20
	maxEntryPageSize     = 100
)

// journalService owns the journal entry lifecycle.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountRegistry
	ledgerRepo  portsrepo.LedgerReader
	poster      portssvc.LedgerPosterSvc
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithJournalWorkplaceAuthorizer sets the workplace authorizer for the journal service.
func WithJournalWorkplaceAuthorizer(authorizer portssvc.WorkplaceAuthorizerSvc) JournalServiceOption {
	return func(s *journalService) {
		s.WorkplaceAuthorizer = authorizer
	}
}

// WithJournalClock overrides the time source used for audit fields.
func WithJournalClock(clock func() time.Time) JournalServiceOption {
	return func(s *journalService) {
		s.Clock = clock
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	accountRepo portsrepo.AccountRegistry,
	ledgerRepo portsrepo.LedgerReader,
	poster portssvc.LedgerPosterSvc,
	options ...JournalServiceOption,
) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		poster:      poster,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// CreateDraft creates a new DRAFT entry. Balance and account checks run on submit.
func (s *journalService) CreateDraft(ctx context.Context, workplaceID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeAction(ctx, userID, workplaceID, domain.ActionEdit); err != nil {
		return nil, err
	}

	entryDate, err := parseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	entry := domain.JournalEntry{
		EntryID:     uuid.NewString(),
		WorkplaceID: workplaceID,
		Reference:   strings.TrimSpace(req.Reference),
		EntryDate:   entryDate,
		Description: req.Description,
		Status:      domain.StatusDraft,
		Version:     1,
		Audit: domain.EntryAudit{
			CreatedBy:     userID,
			CreatedAt:     now,
			LastUpdatedBy: userID,
			LastUpdatedAt: now,
		},
	}
	entry.Lines, err = s.resolveLines(ctx, workplaceID, entry.EntryID, req.Lines)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.CreateEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to create journal entry",
			slog.String("workplace_id", workplaceID),
			slog.String("reference", entry.Reference))
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry draft created",
		slog.String("entry_id", entry.EntryID),
		slog.String("reference", entry.Reference),
		slog.Int("lines", len(entry.Lines)))
	return &entry, nil
}

// UpdateDraft replaces the header and lines of a DRAFT entry.
func (s *journalService) UpdateDraft(ctx context.Context, workplaceID, entryID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeAction(ctx, userID, workplaceID, domain.ActionEdit); err != nil {
		return nil, err
	}

	existing, err := s.journalRepo.FindEntryByID(ctx, workplaceID, entryID)
	if err != nil {
		return nil, err
	}
	if _, ok := existing.Status.Next(domain.ActionEdit); !ok {
		return nil, apperrors.NewInvalidTransition(existing.Status, string(domain.ActionEdit))
	}

	entryDate, err := parseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Reference = strings.TrimSpace(req.Reference)
	updated.EntryDate = entryDate
	updated.Description = req.Description
	updated.Version = existing.Version + 1
	updated.Audit.LastUpdatedBy = userID
	updated.Audit.LastUpdatedAt = s.Now()
	updated.Lines, err = s.resolveLines(ctx, workplaceID, entryID, req.Lines)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.ReplaceDraft(ctx, updated, existing.Version); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Submit validates a DRAFT entry and moves it to PENDING_APPROVAL.
// A failed validation leaves the entry in DRAFT.
func (s *journalService) Submit(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeAction(ctx, userID, workplaceID, domain.ActionSubmit); err != nil {
		return nil, err
	}

	entry, err := s.journalRepo.FindEntryByID(ctx, workplaceID, entryID)
	if err != nil {
		return nil, err
	}
	if _, ok := entry.Status.Next(domain.ActionSubmit); !ok {
		return nil, apperrors.NewInvalidTransition(entry.Status, string(domain.ActionSubmit))
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, workplaceID, nonEmpty(entry.AccountIDs()))
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for entry %s: %w", entryID, err)
	}
	if err := ValidateEntry(*entry, accounts); err != nil {
		s.LogDebug(ctx, "Journal entry failed validation on submit",
			slog.String("entry_id", entryID),
			slog.String("error", err.Error()))
		return nil, err
	}

	return s.advance(ctx, entry, domain.ActionSubmit, userID, "")
}

// Approve moves a PENDING_APPROVAL entry to APPROVED.
func (s *journalService) Approve(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	return s.decide(ctx, workplaceID, entryID, domain.ActionApprove, "", userID)
}

// Reject moves a PENDING_APPROVAL entry to REJECTED. REJECTED is terminal.
func (s *journalService) Reject(ctx context.Context, workplaceID, entryID, reason, userID string) (*domain.JournalEntry, error) {
	return s.decide(ctx, workplaceID, entryID, domain.ActionReject, reason, userID)
}

func (s *journalService) decide(ctx context.Context, workplaceID, entryID string, action domain.EntryAction, reason, userID string) (*domain.JournalEntry, error) {
	reason, err := requireReason(action, reason)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeAction(ctx, userID, workplaceID, action); err != nil {
		return nil, err
	}

	entry, err := s.journalRepo.FindEntryByID(ctx, workplaceID, entryID)
	if err != nil {
		return nil, err
	}
	return s.advance(ctx, entry, action, userID, reason)
}

// Post applies an APPROVED entry to the ledger.
func (s *journalService) Post(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeAction(ctx, userID, workplaceID, domain.ActionPost); err != nil {
		return nil, err
	}

	entry, err := s.journalRepo.FindEntryByID(ctx, workplaceID, entryID)
	if err != nil {
		return nil, err
	}
	if _, ok := entry.Status.Next(domain.ActionPost); !ok {
		return nil, apperrors.NewInvalidTransition(entry.Status, string(domain.ActionPost))
	}
	return s.poster.Post(ctx, *entry, userID)
}

// Void reverses a POSTED entry.
func (s *journalService) Void(ctx context.Context, workplaceID, entryID, reason, userID string) (*domain.JournalEntry, error) {
	reason, err := requireReason(domain.ActionVoid, reason)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeAction(ctx, userID, workplaceID, domain.ActionVoid); err != nil {
		return nil, err
	}

	entry, err := s.journalRepo.FindEntryByID(ctx, workplaceID, entryID)
	if err != nil {
		return nil, err
	}
	if _, ok := entry.Status.Next(domain.ActionVoid); !ok {
		return nil, apperrors.NewInvalidTransition(entry.Status, string(domain.ActionVoid))
	}
	return s.poster.Void(ctx, *entry, reason, userID)
}

// Duplicate clones an entry of any status into a new DRAFT.
func (s *journalService) Duplicate(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeAction(ctx, userID, workplaceID, domain.ActionDuplicate); err != nil {
		return nil, err
	}

	source, err := s.journalRepo.FindEntryByID(ctx, workplaceID, entryID)
	if err != nil {
		return nil, err
	}
	status, ok := source.Status.Next(domain.ActionDuplicate)
	if !ok {
		return nil, apperrors.NewInvalidTransition(source.Status, string(domain.ActionDuplicate))
	}

	now := s.Now()
	sourceID := source.EntryID
	dup := domain.JournalEntry{
		EntryID:          uuid.NewString(),
		WorkplaceID:      source.WorkplaceID,
		Reference:        source.Reference,
		EntryDate:        source.EntryDate,
		Description:      source.Description,
		Status:           status,
		DuplicatedFromID: &sourceID,
		Version:          1,
		Audit: domain.EntryAudit{
			CreatedBy:     userID,
			CreatedAt:     now,
			LastUpdatedBy: userID,
			LastUpdatedAt: now,
		},
		Lines: make([]domain.JournalEntryLine, len(source.Lines)),
	}
	for i, line := range source.Lines {
		line.LineID = uuid.NewString()
		line.EntryID = dup.EntryID
		dup.Lines[i] = line
	}

	if err := s.journalRepo.CreateEntry(ctx, dup); err != nil {
		s.LogError(ctx, err, "Failed to store duplicated journal entry",
			slog.String("source_entry_id", sourceID))
		return nil, fmt.Errorf("failed to duplicate journal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry duplicated",
		slog.String("source_entry_id", sourceID),
		slog.String("entry_id", dup.EntryID))
	return &dup, nil
}

// GetEntry returns a single entry with its lines.
func (s *journalService) GetEntry(ctx context.Context, workplaceID, entryID, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, userID, workplaceID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.journalRepo.FindEntryByID(ctx, workplaceID, entryID)
}

// ListEntries returns a page of entries, newest first.
func (s *journalService) ListEntries(ctx context.Context, workplaceID, userID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, workplaceID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	filter := portsrepo.EntryFilter{
		Limit: pagination.ClampLimit(params.Limit, defaultEntryPageSize, maxEntryPageSize),
	}
	if params.Status != "" {
		status, err := domain.ParseEntryStatus(params.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filter.Status = &status
	}
	if params.NextToken != "" {
		cursor, err := pagination.DecodeEntryCursor(params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filter.After = &cursor
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, workplaceID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("workplace_id", workplaceID))
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return &dto.ListJournalEntriesResponse{
		Entries:   dto.ToJournalEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// ListPostings returns the ledger postings recorded for an entry, originals first.
func (s *journalService) ListPostings(ctx context.Context, workplaceID, entryID, userID string) ([]domain.LedgerPosting, error) {
	if err := s.AuthorizeUser(ctx, userID, workplaceID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.journalRepo.FindEntryByID(ctx, workplaceID, entryID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListPostingsByEntry(ctx, workplaceID, entryID)
}

// advance persists a transition that does not touch the ledger.
func (s *journalService) advance(ctx context.Context, entry *domain.JournalEntry, action domain.EntryAction, userID, reason string) (*domain.JournalEntry, error) {
	next, ok := entry.Status.Next(action)
	if !ok {
		return nil, apperrors.NewInvalidTransition(entry.Status, string(action))
	}

	change := domain.StatusChange{
		EntryID:         entry.EntryID,
		From:            entry.Status,
		To:              next,
		ExpectedVersion: entry.Version,
		Actor:           userID,
		At:              s.Now(),
		Reason:          reason,
	}
	if err := s.journalRepo.TransitionStatus(ctx, entry.WorkplaceID, change); err != nil {
		s.LogWarn(ctx, "Journal entry transition not persisted",
			slog.String("entry_id", entry.EntryID),
			slog.String("action", string(action)),
			slog.String("error", err.Error()))
		return nil, err
	}

	entry.Apply(change)
	s.LogInfo(ctx, "Journal entry transitioned",
		slog.String("entry_id", entry.EntryID),
		slog.String("from", change.From.String()),
		slog.String("to", change.To.String()))
	return entry, nil
}

// resolveLines maps request lines onto entry lines, filling account ids from codes and codes from ids.
// Unknown codes keep an empty AccountID and surface as InvalidAccount on submit.
func (s *journalService) resolveLines(ctx context.Context, workplaceID, entryID string, reqLines []dto.JournalEntryLineRequest) ([]domain.JournalEntryLine, error) {
	var ids, codes []string
	for _, l := range reqLines {
		if l.AccountID != "" {
			ids = append(ids, l.AccountID)
		} else if l.AccountCode != "" {
			codes = append(codes, l.AccountCode)
		}
	}

	byID := map[string]domain.Account{}
	byCode := map[string]domain.Account{}
	var err error
	if len(ids) > 0 {
		if byID, err = s.accountRepo.FindAccountsByIDs(ctx, workplaceID, ids); err != nil {
			return nil, fmt.Errorf("failed to resolve accounts: %w", err)
		}
	}
	if len(codes) > 0 {
		if byCode, err = s.accountRepo.FindAccountsByCodes(ctx, workplaceID, codes); err != nil {
			return nil, fmt.Errorf("failed to resolve account codes: %w", err)
		}
	}

	lines := make([]domain.JournalEntryLine, len(reqLines))
	for i, l := range reqLines {
		line := domain.JournalEntryLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			LineNumber:  i + 1,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
		if line.AccountID != "" {
			if acc, ok := byID[line.AccountID]; ok && line.AccountCode == "" {
				line.AccountCode = acc.Code
			}
		} else if acc, ok := byCode[line.AccountCode]; ok {
			line.AccountID = acc.AccountID
		}
		lines[i] = line
	}
	return lines, nil
}

func parseEntryDate(v string) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid entry date %q, expected YYYY-MM-DD", apperrors.ErrValidation, v)
	}
	return d, nil
}

func requireReason(action domain.EntryAction, reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if action.RequiresReason() && reason == "" {
		return "", fmt.Errorf("%w: a reason is required to %s a journal entry", apperrors.ErrValidation, action)
	}
	return reason, nil
}

func nonEmpty(ids []string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
