package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerPosting represents a row of the append-only ledger_postings table.
type LedgerPosting struct {
	PostingID   string          `db:"posting_id"`
	EntryID     string          `db:"entry_id"`
	LineID      string          `db:"line_id"`
	AccountID   string          `db:"account_id"`
	WorkplaceID string          `db:"workplace_id"`
	PostingDate time.Time       `db:"posting_date"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Amount      decimal.Decimal `db:"amount"`
	Kind        string          `db:"kind"`
	PostedAt    time.Time       `db:"posted_at"`
	PostedBy    string          `db:"posted_by"`
}
