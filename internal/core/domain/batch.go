package domain

// ImportRow is one validated-shape row of a batch import.
type ImportRow struct {
	Reference       string `json:"reference" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Description     string `json:"description"`
	AccountCode     string `json:"accountCode" validate:"required"`
	AccountName     string `json:"accountName"`
	DebitAmount     string `json:"debitAmount"`
	CreditAmount    string `json:"creditAmount"`
	LineDescription string `json:"lineDescription"`
}

// RowError reports a problem with a single input row. Row is 1-based.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BatchImportResult is the outcome of validating a batch.
// ValidatedEntries are ready to be submitted through the normal lifecycle.
type BatchImportResult struct {
	ValidatedEntries []JournalEntry `json:"validatedEntries"`
	Errors           []RowError     `json:"errors"`
}
