package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingKind distinguishes original postings from void reversals.
type PostingKind string

const (
	PostingKindPost PostingKind = "POST"
	PostingKindVoid PostingKind = "VOID"
)

// LedgerPosting is an append-only record of one line's effect on an account balance.
type LedgerPosting struct {
	PostingID   string          `json:"postingID"`
	EntryID     string          `json:"entryID"`
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	WorkplaceID string          `json:"workplaceID"`
	PostingDate time.Time       `json:"postingDate"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Amount      decimal.Decimal `json:"amount"` // signed delta applied to the running balance
	Kind        PostingKind     `json:"kind"`
	PostedAt    time.Time       `json:"postedAt"`
	PostedBy    string          `json:"postedBy"`
}

// AccountBalance is the cached running balance of an account.
type AccountBalance struct {
	AccountID    string          `json:"accountID"`
	WorkplaceID  string          `json:"workplaceID"`
	Balance      decimal.Decimal `json:"balance"`
	LastPostedAt time.Time       `json:"lastPostedAt"`
	Version      int64           `json:"version"`
}

// StatusChange describes an optimistic status transition persisted together with postings.
type StatusChange struct {
	EntryID         string
	From            EntryStatus
	To              EntryStatus
	ExpectedVersion int64
	Actor           string
	At              time.Time
	Reason          string
}

// PostingBatch is everything the ledger store must apply atomically for one post or void.
type PostingBatch struct {
	WorkplaceID string
	Change      StatusChange
	Postings    []LedgerPosting
	Event       *OutboxMessage
}

// BalanceDeltas sums the signed posting amounts per account.
func (b PostingBatch) BalanceDeltas() map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal)
	for _, p := range b.Postings {
		deltas[p.AccountID] = deltas[p.AccountID].Add(p.Amount)
	}
	return deltas
}
