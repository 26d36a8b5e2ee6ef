package dto

import "github.com/SscSPs/ledger_backend/internal/core/domain"

// BatchImportRequest is the body of a batch import. Row shape is checked by the service
// so that every bad row is reported instead of failing the whole request.
type BatchImportRequest struct {
	Rows []domain.ImportRow `json:"rows" binding:"required,min=1,max=5000"`
}

// BatchImportResponse reports validated entries and per-row errors.
type BatchImportResponse struct {
	ValidatedEntries []JournalEntryResponse `json:"validatedEntries"`
	Errors           []domain.RowError      `json:"errors"`
}

// ToBatchImportResponse converts a batch result to its response DTO.
func ToBatchImportResponse(r *domain.BatchImportResult) BatchImportResponse {
	errs := r.Errors
	if errs == nil {
		errs = []domain.RowError{}
	}
	return BatchImportResponse{
		ValidatedEntries: ToJournalEntryResponses(r.ValidatedEntries),
		Errors:           errs,
	}
}
