package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/utils/accounting"
)

// ledgerPoster turns approved entries into postings and applies them atomically.
type ledgerPoster struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRegistry
}

// LedgerPosterOption is a functional option for configuring the ledger poster
type LedgerPosterOption func(*ledgerPoster)

// WithLedgerClock overrides the time source used for postedAt/voidedAt.
func WithLedgerClock(clock func() time.Time) LedgerPosterOption {
	return func(p *ledgerPoster) {
		p.Clock = clock
	}
}

// NewLedgerPoster creates a new ledger poster.
func NewLedgerPoster(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRegistry, options ...LedgerPosterOption) portssvc.LedgerPosterSvc {
	p := &ledgerPoster{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

var _ portssvc.LedgerPosterSvc = (*ledgerPoster)(nil)

// Post applies an APPROVED entry to the ledger. On any storage failure the entry stays APPROVED.
func (p *ledgerPoster) Post(ctx context.Context, entry domain.JournalEntry, userID string) (*domain.JournalEntry, error) {
	next, ok := entry.Status.Next(domain.ActionPost)
	if !ok {
		return nil, apperrors.NewInvalidTransition(entry.Status, string(domain.ActionPost))
	}

	accounts, err := p.accountRepo.FindAccountsByIDs(ctx, entry.WorkplaceID, entry.AccountIDs())
	if err != nil {
		return nil, &apperrors.PostingError{EntryID: entry.EntryID, Op: "post", Err: err}
	}
	// The account snapshot may have changed since submit.
	if err := ValidateEntry(entry, accounts); err != nil {
		p.LogWarn(ctx, "Approved entry no longer validates, refusing to post",
			slog.String("entry_id", entry.EntryID),
			slog.String("error", err.Error()))
		return nil, err
	}

	// Postings net to exactly zero.
	now := p.Now()
	postings := make([]domain.LedgerPosting, 0, len(entry.Lines))
	for _, line := range accounting.SettleResidual(entry.Lines) {
		delta, err := accounting.LineDelta(line, accounts[line.AccountID].AccountType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvariantViolation, err)
		}
		postings = append(postings, domain.LedgerPosting{
			PostingID:   uuid.NewString(),
			EntryID:     entry.EntryID,
			LineID:      line.LineID,
			AccountID:   line.AccountID,
			WorkplaceID: entry.WorkplaceID,
			PostingDate: entry.EntryDate,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Amount:      delta,
			Kind:        domain.PostingKindPost,
			PostedAt:    now,
			PostedBy:    userID,
		})
	}

	change := domain.StatusChange{
		EntryID:         entry.EntryID,
		From:            entry.Status,
		To:              next,
		ExpectedVersion: entry.Version,
		Actor:           userID,
		At:              now,
	}
	if err := p.apply(ctx, entry, change, postings, domain.EventEntryPosted, "post"); err != nil {
		return nil, err
	}

	entry.Apply(change)
	p.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.Int("postings", len(postings)))
	return &entry, nil
}

// Void appends a reversing posting for every original posting and marks the entry VOIDED.
func (p *ledgerPoster) Void(ctx context.Context, entry domain.JournalEntry, reason, userID string) (*domain.JournalEntry, error) {
	next, ok := entry.Status.Next(domain.ActionVoid)
	if !ok {
		return nil, apperrors.NewInvalidTransition(entry.Status, string(domain.ActionVoid))
	}

	recorded, err := p.ledgerRepo.ListPostingsByEntry(ctx, entry.WorkplaceID, entry.EntryID)
	if err != nil {
		return nil, &apperrors.PostingError{EntryID: entry.EntryID, Op: "void", Err: err}
	}

	now := p.Now()
	reversals := make([]domain.LedgerPosting, 0, len(recorded))
	for _, orig := range recorded {
		if orig.Kind != domain.PostingKindPost {
			continue
		}
		reversals = append(reversals, domain.LedgerPosting{
			PostingID:   uuid.NewString(),
			EntryID:     orig.EntryID,
			LineID:      orig.LineID,
			AccountID:   orig.AccountID,
			WorkplaceID: orig.WorkplaceID,
			PostingDate: orig.PostingDate,
			Debit:       orig.Credit,
			Credit:      orig.Debit,
			Amount:      orig.Amount.Neg(),
			Kind:        domain.PostingKindVoid,
			PostedAt:    now,
			PostedBy:    userID,
		})
	}
	if len(reversals) == 0 {
		p.LogError(ctx, apperrors.ErrInvariantViolation, "Posted entry has no recorded postings",
			slog.String("entry_id", entry.EntryID))
		return nil, fmt.Errorf("%w: posted entry %s has no recorded postings", apperrors.ErrInvariantViolation, entry.EntryID)
	}

	change := domain.StatusChange{
		EntryID:         entry.EntryID,
		From:            entry.Status,
		To:              next,
		ExpectedVersion: entry.Version,
		Actor:           userID,
		At:              now,
		Reason:          reason,
	}
	if err := p.apply(ctx, entry, change, reversals, domain.EventEntryVoided, "void"); err != nil {
		return nil, err
	}

	entry.Apply(change)
	p.LogInfo(ctx, "Journal entry voided",
		slog.String("entry_id", entry.EntryID),
		slog.Int("reversals", len(reversals)))
	return &entry, nil
}

func (p *ledgerPoster) apply(ctx context.Context, entry domain.JournalEntry, change domain.StatusChange, postings []domain.LedgerPosting, eventType domain.EventType, op string) error {
	event, err := newOutboxMessage(entry, change, postings, eventType)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	batch := domain.PostingBatch{
		WorkplaceID: entry.WorkplaceID,
		Change:      change,
		Postings:    postings,
		Event:       event,
	}
	if err := p.ledgerRepo.ApplyPostings(ctx, batch); err != nil {
		var cme *apperrors.ConcurrentModificationError
		if errors.As(err, &cme) {
			return err
		}
		p.LogError(ctx, err, "Failed to apply postings",
			slog.String("entry_id", entry.EntryID),
			slog.String("op", op))
		return &apperrors.PostingError{EntryID: entry.EntryID, Op: op, Err: err}
	}
	return nil
}

func newOutboxMessage(entry domain.JournalEntry, change domain.StatusChange, postings []domain.LedgerPosting, eventType domain.EventType) (*domain.OutboxMessage, error) {
	payload, err := json.Marshal(domain.LedgerEvent{
		Type:        eventType,
		EntryID:     entry.EntryID,
		WorkplaceID: entry.WorkplaceID,
		Reference:   entry.Reference,
		Actor:       change.Actor,
		OccurredAt:  change.At,
		Reason:      change.Reason,
		Postings:    postings,
	})
	if err != nil {
		return nil, err
	}
	return &domain.OutboxMessage{
		ID:          ulid.Make().String(),
		AggregateID: entry.EntryID,
		EventType:   eventType,
		Payload:     payload,
		Status:      domain.OutboxPending,
		CreatedAt:   change.At,
	}, nil
}
