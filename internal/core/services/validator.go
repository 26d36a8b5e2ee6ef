package services

import (
	"sort"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateEntry checks a candidate entry against an account snapshot keyed by account id.
// It returns nil or a *apperrors.ValidationError listing violations in check order:
// invalid accounts, malformed lines, imbalance, then emptiness.
func ValidateEntry(entry domain.JournalEntry, accounts map[string]domain.Account) error {
	lines := make([]domain.JournalEntryLine, len(entry.Lines))
	copy(lines, entry.Lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].LineNumber < lines[j].LineNumber })

	var violations []apperrors.Violation

	for _, line := range lines {
		acc, ok := accounts[line.AccountID]
		if line.AccountID == "" || !ok || !acc.IsActive || acc.WorkplaceID != entry.WorkplaceID {
			violations = append(violations, apperrors.NewInvalidAccount(line.LineNumber, lineAccountCode(line, acc, ok)))
		}
	}

	for _, line := range lines {
		if isMalformed(line) {
			violations = append(violations, apperrors.NewMalformedLine(line.LineNumber))
		}
	}

	debit, credit := entry.Totals()
	if !domain.IsBalanced(debit, credit) {
		violations = append(violations, apperrors.NewUnbalancedEntry(debit, credit))
	}

	if len(lines) == 0 {
		violations = append(violations, apperrors.NewEmptyEntry())
	}

	if len(violations) > 0 {
		return &apperrors.ValidationError{Violations: violations}
	}
	return nil
}

// isMalformed reports a line that does not have exactly one positive side, or whose
// amounts carry more decimal places than storage keeps.
func isMalformed(line domain.JournalEntryLine) bool {
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return true
	}
	if !domain.FitsAmountScale(line.Debit) || !domain.FitsAmountScale(line.Credit) {
		return true
	}
	return line.Debit.IsZero() == line.Credit.IsZero()
}

func lineAccountCode(line domain.JournalEntryLine, acc domain.Account, found bool) string {
	switch {
	case line.AccountCode != "":
		return line.AccountCode
	case found:
		return acc.Code
	default:
		return line.AccountID
	}
}

// parseAmount treats an empty string as zero.
func parseAmount(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v)
}
