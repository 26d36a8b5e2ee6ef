package models

// Account represents a row of the accounts table.
type Account struct {
	AccountID   string `db:"account_id"`
	WorkplaceID string `db:"workplace_id"`
	Code        string `db:"code"`
	Name        string `db:"name"`
	AccountType string `db:"account_type"`
	IsActive    bool   `db:"is_active"`
	AuditFields
}
