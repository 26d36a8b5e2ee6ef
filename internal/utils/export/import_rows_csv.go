package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// importColumns maps accepted header names to setters on an ImportRow.
var importColumns = map[string]func(*domain.ImportRow, string){
	"reference":       func(r *domain.ImportRow, v string) { r.Reference = v },
	"date":            func(r *domain.ImportRow, v string) { r.Date = v },
	"description":     func(r *domain.ImportRow, v string) { r.Description = v },
	"accountcode":     func(r *domain.ImportRow, v string) { r.AccountCode = v },
	"accountname":     func(r *domain.ImportRow, v string) { r.AccountName = v },
	"debitamount":     func(r *domain.ImportRow, v string) { r.DebitAmount = v },
	"creditamount":    func(r *domain.ImportRow, v string) { r.CreditAmount = v },
	"linedescription": func(r *domain.ImportRow, v string) { r.LineDescription = v },
}

func normaliseHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(h)
}

// ReadImportRows parses batch import rows from CSV. The first record is the header; column
// names are matched case-insensitively ignoring spaces, dashes and underscores.
func ReadImportRows(r io.Reader) ([]domain.ImportRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	setters := make([]func(*domain.ImportRow, string), len(header))
	for i, h := range header {
		set, ok := importColumns[normaliseHeader(h)]
		if !ok {
			return nil, fmt.Errorf("unknown csv column %q", h)
		}
		setters[i] = set
	}

	var rows []domain.ImportRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(rows)+1, err)
		}
		var row domain.ImportRow
		for i, v := range record {
			if i < len(setters) {
				setters[i](&row, strings.TrimSpace(v))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
