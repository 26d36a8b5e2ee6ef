package domain

import "fmt"

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// NormalBalance is the side on which an account's balance naturally increases.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "DEBIT"
	CreditNormal NormalBalance = "CREDIT"
)

// NormalBalance returns the normal-balance side for the account type.
func (t AccountType) NormalBalance() (NormalBalance, error) {
	switch t {
	case Asset, Expense:
		return DebitNormal, nil
	case Liability, Equity, Revenue:
		return CreditNormal, nil
	default:
		return "", fmt.Errorf("unknown account type '%s'", t)
	}
}

// IsPeriodReset reports whether balances of this type restart at zero every reporting period.
func (t AccountType) IsPeriodReset() bool {
	return t == Revenue || t == Expense
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	_, err := t.NormalBalance()
	return err == nil
}

// Account represents a ledger account as supplied by the account registry.
// The core never mutates accounts.
type Account struct {
	AccountID   string      `json:"accountID"`
	WorkplaceID string      `json:"workplaceID"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	IsActive    bool        `json:"isActive"`
	AuditFields
}
