package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceHeader is the column order of the trial balance CSV.
var TrialBalanceHeader = []string{"Account Code", "Account Name", "Beginning Balance", "Debit", "Credit", "Ending Balance"}

func amount(d decimal.Decimal) string {
	return d.StringFixed(domain.AmountScale)
}

func totalsRecord(label string, t domain.TrialBalanceTotals) []string {
	return []string{"", label, amount(t.BeginningBalance), amount(t.Debit), amount(t.Credit), amount(t.EndingBalance)}
}

// WriteTrialBalanceCSV writes the report grouped by category, each followed by a subtotal row,
// and a grand total row at the end.
func WriteTrialBalanceCSV(w io.Writer, report *domain.TrialBalanceReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TrialBalanceHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, cat := range report.Categories {
		for _, r := range cat.Rows {
			record := []string{
				r.Code,
				r.Name,
				amount(r.BeginningBalance),
				amount(r.PeriodDebit),
				amount(r.PeriodCredit),
				amount(r.EndingBalance),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write csv row for account %s: %w", r.Code, err)
			}
		}
		if err := cw.Write(totalsRecord("Total "+cat.Name, cat.Subtotal)); err != nil {
			return fmt.Errorf("failed to write csv subtotal for %s: %w", cat.Name, err)
		}
	}
	if err := cw.Write(totalsRecord("Total", report.Total)); err != nil {
		return fmt.Errorf("failed to write csv total: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
