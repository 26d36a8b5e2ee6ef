package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta returns the change a debit/credit pair makes to the running balance of an account.
// Debit-normal accounts (ASSET, EXPENSE) grow with debits; credit-normal accounts
// (LIABILITY, EQUITY, REVENUE) grow with credits.
func SignedDelta(accountType domain.AccountType, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	side, err := accountType.NormalBalance()
	if err != nil {
		return decimal.Zero, err
	}
	switch side {
	case domain.DebitNormal:
		return debit.Sub(credit), nil
	case domain.CreditNormal:
		return credit.Sub(debit), nil
	}
	return decimal.Zero, fmt.Errorf("unknown normal balance '%s'", side)
}

// LineDelta is SignedDelta applied to a journal entry line.
func LineDelta(line domain.JournalEntryLine, accountType domain.AccountType) (decimal.Decimal, error) {
	delta, err := SignedDelta(accountType, line.Debit, line.Credit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("line %d (account %s): %w", line.LineNumber, line.AccountID, err)
	}
	return delta, nil
}

// EndingBalance rolls period movement onto a beginning balance using the account's sign convention.
func EndingBalance(accountType domain.AccountType, beginning, periodDebit, periodCredit decimal.Decimal) (decimal.Decimal, error) {
	movement, err := SignedDelta(accountType, periodDebit, periodCredit)
	if err != nil {
		return decimal.Zero, err
	}
	return beginning.Add(movement), nil
}

// SettleResidual returns a copy of lines whose debits and credits net to exactly zero.
// The imbalance accepted by validation is added to the largest line on the lighter side,
// or taken off the largest line on the heavier side when the lighter side has no lines.
func SettleResidual(lines []domain.JournalEntryLine) []domain.JournalEntryLine {
	settled := make([]domain.JournalEntryLine, len(lines))
	copy(settled, lines)

	debit, credit := domain.JournalEntry{Lines: settled}.Totals()
	residual := debit.Sub(credit)
	if residual.IsZero() {
		return settled
	}
	debitsHeavy := residual.IsPositive()
	residual = residual.Abs()

	if i := largestLine(settled, debitsHeavy); i >= 0 {
		if debitsHeavy {
			settled[i].Credit = settled[i].Credit.Add(residual)
		} else {
			settled[i].Debit = settled[i].Debit.Add(residual)
		}
		return settled
	}
	// A remainder larger than the line flips it to the other side.
	i := largestLine(settled, !debitsHeavy)
	net := settled[i].Debit.Sub(settled[i].Credit)
	if debitsHeavy {
		net = net.Sub(residual)
	} else {
		net = net.Add(residual)
	}
	settled[i].Debit, settled[i].Credit = decimal.Zero, decimal.Zero
	if net.IsNegative() {
		settled[i].Credit = net.Neg()
	} else {
		settled[i].Debit = net
	}
	return settled
}

// largestLine returns the index of the first line with the largest positive credit
// (or debit), or -1 when no line has that side.
func largestLine(lines []domain.JournalEntryLine, creditSide bool) int {
	idx := -1
	best := decimal.Zero
	for i, l := range lines {
		v := l.Debit
		if creditSide {
			v = l.Credit
		}
		if v.GreaterThan(best) {
			idx, best = i, v
		}
	}
	return idx
}
