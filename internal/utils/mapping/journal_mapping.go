package mapping

import (
	"fmt"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/SscSPs/ledger_backend/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	a := d.Audit
	return models.JournalEntry{
		EntryID:          d.EntryID,
		WorkplaceID:      d.WorkplaceID,
		Reference:        d.Reference,
		EntryDate:        d.EntryDate,
		Description:      d.Description,
		Status:           d.Status.String(),
		DuplicatedFromID: d.DuplicatedFromID,
		Version:          d.Version,
		RequestedBy:      nullable(a.RequestedBy),
		RequestedAt:      a.RequestedAt,
		ApprovedBy:       nullable(a.ApprovedBy),
		ApprovedAt:       a.ApprovedAt,
		RejectedBy:       nullable(a.RejectedBy),
		RejectedAt:       a.RejectedAt,
		RejectionReason:  nullable(a.RejectionReason),
		PostedBy:         nullable(a.PostedBy),
		PostedAt:         a.PostedAt,
		VoidedBy:         nullable(a.VoidedBy),
		VoidedAt:         a.VoidedAt,
		VoidReason:       nullable(a.VoidReason),
		AuditFields: models.AuditFields{
			CreatedAt:     a.CreatedAt,
			CreatedBy:     a.CreatedBy,
			LastUpdatedAt: a.LastUpdatedAt,
			LastUpdatedBy: a.LastUpdatedBy,
		},
	}
}

// ToDomainJournalEntry converts a model JournalEntry and its lines to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalEntryLine) (domain.JournalEntry, error) {
	status, err := domain.ParseEntryStatus(m.Status)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("journal entry %s: %w", m.EntryID, err)
	}
	d := domain.JournalEntry{
		EntryID:          m.EntryID,
		WorkplaceID:      m.WorkplaceID,
		Reference:        m.Reference,
		EntryDate:        m.EntryDate,
		Description:      m.Description,
		Status:           status,
		DuplicatedFromID: m.DuplicatedFromID,
		Version:          m.Version,
		Lines:            make([]domain.JournalEntryLine, len(lines)),
		Audit: domain.EntryAudit{
			CreatedBy:       m.CreatedBy,
			CreatedAt:       m.CreatedAt,
			LastUpdatedBy:   m.LastUpdatedBy,
			LastUpdatedAt:   m.LastUpdatedAt,
			RequestedBy:     deref(m.RequestedBy),
			RequestedAt:     m.RequestedAt,
			ApprovedBy:      deref(m.ApprovedBy),
			ApprovedAt:      m.ApprovedAt,
			RejectedBy:      deref(m.RejectedBy),
			RejectedAt:      m.RejectedAt,
			RejectionReason: deref(m.RejectionReason),
			PostedBy:        deref(m.PostedBy),
			PostedAt:        m.PostedAt,
			VoidedBy:        deref(m.VoidedBy),
			VoidedAt:        m.VoidedAt,
			VoidReason:      deref(m.VoidReason),
		},
	}
	for i, l := range lines {
		d.Lines[i] = ToDomainJournalEntryLine(l)
	}
	return d, nil
}

// ToModelJournalEntryLine converts a domain line to a model line
func ToModelJournalEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		LineNumber:  d.LineNumber,
		AccountID:   nullable(d.AccountID),
		AccountCode: d.AccountCode,
		Description: d.Description,
		Debit:       d.Debit,
		Credit:      d.Credit,
	}
}

// ToDomainJournalEntryLine converts a model line to a domain line
func ToDomainJournalEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		LineNumber:  m.LineNumber,
		AccountID:   deref(m.AccountID),
		AccountCode: m.AccountCode,
		Description: m.Description,
		Debit:       m.Debit,
		Credit:      m.Credit,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
