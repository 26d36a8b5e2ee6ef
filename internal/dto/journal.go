package dto

import (
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalEntryLineRequest is one line of a create or edit request.
// A line references its account either by id or by code.
type JournalEntryLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required_without=AccountCode"`
	AccountCode string          `json:"accountCode" binding:"required_without=AccountID"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntryRequest creates or edits a DRAFT entry.
type JournalEntryRequest struct {
	Reference   string                    `json:"reference" binding:"required,max=64"`
	Date        string                    `json:"date" binding:"required,datetime=2006-01-02" example:"2024-01-31"`
	Description string                    `json:"description" binding:"max=500"`
	Lines       []JournalEntryLineRequest `json:"lines" binding:"dive"`
}

// ReasonRequest carries the mandatory reason of a reject or void.
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ListJournalEntriesParams defines query parameters for listing entries.
type ListJournalEntriesParams struct {
	Status    string `form:"status"`
	Limit     int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// JournalEntryLineResponse defines the data returned for an entry line.
type JournalEntryLineResponse struct {
	LineID      string          `json:"lineID"`
	LineNumber  int             `json:"lineNumber"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID          string                     `json:"entryID"`
	WorkplaceID      string                     `json:"workplaceID"`
	Reference        string                     `json:"reference"`
	Date             string                     `json:"date"`
	Description      string                     `json:"description"`
	Status           string                     `json:"status"`
	StatusLabel      string                     `json:"statusLabel"`
	TotalDebit       decimal.Decimal            `json:"totalDebit"`
	TotalCredit      decimal.Decimal            `json:"totalCredit"`
	Lines            []JournalEntryLineResponse `json:"lines"`
	DuplicatedFromID *string                    `json:"duplicatedFromID,omitempty"`
	Version          int64                      `json:"version"`
	Audit            domain.EntryAudit          `json:"audit"`
}

// ListJournalEntriesResponse wraps a page of entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// LedgerPostingResponse defines the data returned for a posting.
type LedgerPostingResponse struct {
	PostingID   string          `json:"postingID"`
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	PostingDate string          `json:"postingDate"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	PostedAt    time.Time       `json:"postedAt"`
	PostedBy    string          `json:"postedBy"`
}

// ToJournalEntryResponse converts a domain entry to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	debit, credit := e.Totals()
	lines := make([]JournalEntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalEntryLineResponse{
			LineID:      l.LineID,
			LineNumber:  l.LineNumber,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	return JournalEntryResponse{
		EntryID:          e.EntryID,
		WorkplaceID:      e.WorkplaceID,
		Reference:        e.Reference,
		Date:             e.EntryDate.Format(domain.DateLayout),
		Description:      e.Description,
		Status:           e.Status.String(),
		StatusLabel:      e.Status.Label(),
		TotalDebit:       debit,
		TotalCredit:      credit,
		Lines:            lines,
		DuplicatedFromID: e.DuplicatedFromID,
		Version:          e.Version,
		Audit:            e.Audit,
	}
}

// ToJournalEntryResponses converts a slice of domain entries.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}

// ToLedgerPostingResponses converts postings to response DTOs.
func ToLedgerPostingResponses(postings []domain.LedgerPosting) []LedgerPostingResponse {
	responses := make([]LedgerPostingResponse, len(postings))
	for i, p := range postings {
		responses[i] = LedgerPostingResponse{
			PostingID:   p.PostingID,
			LineID:      p.LineID,
			AccountID:   p.AccountID,
			PostingDate: p.PostingDate.Format(domain.DateLayout),
			Debit:       p.Debit,
			Credit:      p.Credit,
			Amount:      p.Amount,
			Kind:        string(p.Kind),
			PostedAt:    p.PostedAt,
			PostedBy:    p.PostedBy,
		}
	}
	return responses
}
