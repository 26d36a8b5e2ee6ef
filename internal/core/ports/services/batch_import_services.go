package services

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// BatchImportSvc validates imported rows and optionally turns valid groups into drafts.
type BatchImportSvc interface {
	ValidateBatch(ctx context.Context, workplaceID string, rows []domain.ImportRow, userID string) (*domain.BatchImportResult, error)
	// ImportBatch validates and creates a DRAFT entry for every valid group.
	ImportBatch(ctx context.Context, workplaceID string, rows []domain.ImportRow, userID string) (*domain.BatchImportResult, error)
}
