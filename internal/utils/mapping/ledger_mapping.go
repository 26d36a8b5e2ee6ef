package mapping

import (
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/SscSPs/ledger_backend/internal/models"
)

// ToModelLedgerPosting converts a domain posting to a model posting
func ToModelLedgerPosting(d domain.LedgerPosting) models.LedgerPosting {
	return models.LedgerPosting{
		PostingID:   d.PostingID,
		EntryID:     d.EntryID,
		LineID:      d.LineID,
		AccountID:   d.AccountID,
		WorkplaceID: d.WorkplaceID,
		PostingDate: d.PostingDate,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Amount:      d.Amount,
		Kind:        string(d.Kind),
		PostedAt:    d.PostedAt,
		PostedBy:    d.PostedBy,
	}
}

// ToDomainLedgerPosting converts a model posting to a domain posting
func ToDomainLedgerPosting(m models.LedgerPosting) domain.LedgerPosting {
	return domain.LedgerPosting{
		PostingID:   m.PostingID,
		EntryID:     m.EntryID,
		LineID:      m.LineID,
		AccountID:   m.AccountID,
		WorkplaceID: m.WorkplaceID,
		PostingDate: m.PostingDate,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Amount:      m.Amount,
		Kind:        domain.PostingKind(m.Kind),
		PostedAt:    m.PostedAt,
		PostedBy:    m.PostedBy,
	}
}
