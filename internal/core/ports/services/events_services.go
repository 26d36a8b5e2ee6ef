package services

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// EventPublisher delivers ledger domain events to subscribers outside the core.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}
