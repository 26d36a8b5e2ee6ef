package repositories

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// OutboxHandler delivers one message. A nil return marks the message processed.
type OutboxHandler func(ctx context.Context, msg domain.OutboxMessage) error

// OutboxRepository drains domain events written alongside postings.
type OutboxRepository interface {
	// ProcessPending claims up to limit pending messages in id order and hands each to fn.
	// Failed deliveries have their attempt count incremented; a message reaching maxAttempts
	// is marked FAILED. It returns the number of messages delivered.
	ProcessPending(ctx context.Context, limit, maxAttempts int, fn OutboxHandler) (int, error)
}
