package dto

import (
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents an account row in the trial balance response.
type TrialBalanceRowResponse struct {
	AccountID        string          `json:"accountID"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	AccountType      string          `json:"accountType"`
	BeginningBalance decimal.Decimal `json:"beginningBalance"`
	Debit            decimal.Decimal `json:"debit"`
	Credit           decimal.Decimal `json:"credit"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`
}

// TrialBalanceTotalsResponse holds subtotal or grand total columns.
type TrialBalanceTotalsResponse struct {
	BeginningBalance decimal.Decimal `json:"beginningBalance"`
	Debit            decimal.Decimal `json:"debit"`
	Credit           decimal.Decimal `json:"credit"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`
}

// TrialBalanceCategoryResponse is one category section.
type TrialBalanceCategoryResponse struct {
	Category string                     `json:"category"`
	Rows     []TrialBalanceRowResponse  `json:"rows"`
	Subtotal TrialBalanceTotalsResponse `json:"subtotal"`
}

// TrialBalanceResponse represents the trial balance report response.
type TrialBalanceResponse struct {
	PeriodStart string                         `json:"periodStart"`
	AsOf        string                         `json:"asOf"`
	Categories  []TrialBalanceCategoryResponse `json:"categories"`
	Totals      TrialBalanceTotalsResponse     `json:"totals"`
}

func toTotalsResponse(t domain.TrialBalanceTotals) TrialBalanceTotalsResponse {
	return TrialBalanceTotalsResponse{
		BeginningBalance: t.BeginningBalance,
		Debit:            t.Debit,
		Credit:           t.Credit,
		EndingBalance:    t.EndingBalance,
	}
}

// ToTrialBalanceResponse converts a domain trial balance report to a DTO response.
func ToTrialBalanceResponse(report *domain.TrialBalanceReport) TrialBalanceResponse {
	response := TrialBalanceResponse{
		PeriodStart: report.PeriodStart.Format(domain.DateLayout),
		AsOf:        report.AsOf.Format(domain.DateLayout),
		Categories:  make([]TrialBalanceCategoryResponse, len(report.Categories)),
		Totals:      toTotalsResponse(report.Total),
	}
	for i, cat := range report.Categories {
		rows := make([]TrialBalanceRowResponse, len(cat.Rows))
		for j, row := range cat.Rows {
			rows[j] = TrialBalanceRowResponse{
				AccountID:        row.AccountID,
				Code:             row.Code,
				Name:             row.Name,
				AccountType:      string(row.AccountType),
				BeginningBalance: row.BeginningBalance,
				Debit:            row.PeriodDebit,
				Credit:           row.PeriodCredit,
				EndingBalance:    row.EndingBalance,
			}
		}
		response.Categories[i] = TrialBalanceCategoryResponse{
			Category: cat.Name,
			Rows:     rows,
			Subtotal: toTotalsResponse(cat.Subtotal),
		}
	}
	return response
}
