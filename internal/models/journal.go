package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry represents a row of the journal_entries table.
// Lifecycle columns are nullable until the entry reaches the matching status.
type JournalEntry struct {
	EntryID          string     `db:"entry_id"`
	WorkplaceID      string     `db:"workplace_id"`
	Reference        string     `db:"reference"`
	EntryDate        time.Time  `db:"entry_date"`
	Description      string     `db:"description"`
	Status           string     `db:"status"`
	DuplicatedFromID *string    `db:"duplicated_from_id"`
	Version          int64      `db:"version"`
	RequestedBy      *string    `db:"requested_by"`
	RequestedAt      *time.Time `db:"requested_at"`
	ApprovedBy       *string    `db:"approved_by"`
	ApprovedAt       *time.Time `db:"approved_at"`
	RejectedBy       *string    `db:"rejected_by"`
	RejectedAt       *time.Time `db:"rejected_at"`
	RejectionReason  *string    `db:"rejection_reason"`
	PostedBy         *string    `db:"posted_by"`
	PostedAt         *time.Time `db:"posted_at"`
	VoidedBy         *string    `db:"voided_by"`
	VoidedAt         *time.Time `db:"voided_at"`
	VoidReason       *string    `db:"void_reason"`
	AuditFields
}

// JournalEntryLine represents a row of the journal_entry_lines table.
// AccountID is NULL for a draft line whose account code did not resolve.
type JournalEntryLine struct {
	LineID      string          `db:"line_id"`
	EntryID     string          `db:"entry_id"`
	LineNumber  int             `db:"line_number"`
	AccountID   *string         `db:"account_id"`
	AccountCode string          `db:"account_code"`
	Description string          `db:"description"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
}
