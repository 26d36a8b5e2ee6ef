package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceTolerance is the largest |Σdebit − Σcredit| still treated as balanced.
var BalanceTolerance = decimal.New(1, -3)

// AmountScale is the number of decimal places stored for line and posting amounts.
const AmountScale int32 = 4

// EntryAudit records who moved an entry through each lifecycle step and when.
type EntryAudit struct {
	CreatedBy       string     `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastUpdatedBy   string     `json:"lastUpdatedBy"`
	LastUpdatedAt   time.Time  `json:"lastUpdatedAt"`
	RequestedBy     string     `json:"requestedBy,omitempty"`
	RequestedAt     *time.Time `json:"requestedAt,omitempty"`
	ApprovedBy      string     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedBy      string     `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	PostedBy        string     `json:"postedBy,omitempty"`
	PostedAt        *time.Time `json:"postedAt,omitempty"`
	VoidedBy        string     `json:"voidedBy,omitempty"`
	VoidedAt        *time.Time `json:"voidedAt,omitempty"`
	VoidReason      string     `json:"voidReason,omitempty"`
}

// JournalEntry is a journal entry header plus its ordered lines.
type JournalEntry struct {
	EntryID          string             `json:"entryID"`
	WorkplaceID      string             `json:"workplaceID"`
	Reference        string             `json:"reference"`
	EntryDate        time.Time          `json:"entryDate"`
	Description      string             `json:"description"`
	Status           EntryStatus        `json:"status"`
	Lines            []JournalEntryLine `json:"lines"`
	DuplicatedFromID *string            `json:"duplicatedFromID,omitempty"`
	Version          int64              `json:"version"`
	Audit            EntryAudit         `json:"audit"`
}

// JournalEntryLine is one debit-or-credit movement against one account.
type JournalEntryLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	LineNumber  int             `json:"lineNumber"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Totals returns the sum of debits and credits across all lines.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// AccountIDs returns the distinct account ids referenced by the lines, in line order.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// FitsAmountScale reports whether d can be stored without rounding.
func FitsAmountScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// IsBalanced reports whether debit and credit totals agree within BalanceTolerance.
func IsBalanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().LessThanOrEqual(BalanceTolerance)
}
