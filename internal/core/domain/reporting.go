package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountActivity is the raw per-account posting aggregate a trial balance is built from.
type AccountActivity struct {
	Account       Account
	OpeningAmount decimal.Decimal // signed sum of postings dated before the period start
	PeriodDebit   decimal.Decimal
	PeriodCredit  decimal.Decimal
}

// TrialBalanceRow represents a single account line in a trial balance report.
type TrialBalanceRow struct {
	AccountID        string          `json:"accountID"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	AccountType      AccountType     `json:"accountType"`
	BeginningBalance decimal.Decimal `json:"beginningBalance"`
	PeriodDebit      decimal.Decimal `json:"periodDebit"`
	PeriodCredit     decimal.Decimal `json:"periodCredit"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`
}

// TrialBalanceTotals accumulates the numeric columns of a set of rows.
type TrialBalanceTotals struct {
	BeginningBalance decimal.Decimal `json:"beginningBalance"`
	Debit            decimal.Decimal `json:"debit"`
	Credit           decimal.Decimal `json:"credit"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`
}

// Add folds a row into the totals.
func (t TrialBalanceTotals) Add(r TrialBalanceRow) TrialBalanceTotals {
	return TrialBalanceTotals{
		BeginningBalance: t.BeginningBalance.Add(r.BeginningBalance),
		Debit:            t.Debit.Add(r.PeriodDebit),
		Credit:           t.Credit.Add(r.PeriodCredit),
		EndingBalance:    t.EndingBalance.Add(r.EndingBalance),
	}
}

// TrialBalanceCategory is one category section of the report.
type TrialBalanceCategory struct {
	Name        string             `json:"name"`
	AccountType AccountType        `json:"accountType"`
	Rows        []TrialBalanceRow  `json:"rows"`
	Subtotal    TrialBalanceTotals `json:"subtotal"`
}

// TrialBalanceReport is the full trial balance for a workplace as of a date.
type TrialBalanceReport struct {
	WorkplaceID string                 `json:"workplaceID"`
	PeriodStart time.Time              `json:"periodStart"`
	AsOf        time.Time              `json:"asOf"`
	Categories  []TrialBalanceCategory `json:"categories"`
	Total       TrialBalanceTotals     `json:"total"`
}

// TrialBalanceCategories fixes the order and labels of report sections.
var TrialBalanceCategories = []struct {
	Name string
	Type AccountType
}{
	{"Assets", Asset},
	{"Liabilities", Liability},
	{"Equity", Equity},
	{"Revenue", Revenue},
	{"Expenses", Expense},
}
