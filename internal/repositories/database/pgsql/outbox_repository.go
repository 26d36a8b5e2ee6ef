package pgsql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

// PgxOutboxRepository drains outbox_messages.
type PgxOutboxRepository struct {
	BaseRepository
}

// newPgxOutboxRepository creates a new outbox repository.
func newPgxOutboxRepository(pool DBPool) *PgxOutboxRepository {
	return &PgxOutboxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OutboxRepository = (*PgxOutboxRepository)(nil)

// ProcessPending claims pending messages with SKIP LOCKED so several pollers can run side by side.
// Each claimed message is handed to fn while the claim is held.
func (r *PgxOutboxRepository) ProcessPending(ctx context.Context, limit, maxAttempts int, fn portsrepo.OutboxHandler) (int, error) {
	delivered := 0
	err := r.ExecuteTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, aggregate_id, event_type, payload, status, attempts, created_at
			FROM outbox_messages
			WHERE status = $1
			ORDER BY id
			LIMIT $2
			FOR UPDATE SKIP LOCKED`, string(domain.OutboxPending), limit)
		if err != nil {
			return fmt.Errorf("failed to claim outbox messages: %w", err)
		}
		msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OutboxMessage, error) {
			var m domain.OutboxMessage
			var eventType, status string
			var payload []byte
			err := row.Scan(&m.ID, &m.AggregateID, &eventType, &payload, &status, &m.Attempts, &m.CreatedAt)
			m.EventType = domain.EventType(eventType)
			m.Status = domain.OutboxStatus(status)
			m.Payload = payload
			return m, err
		})
		if err != nil {
			return fmt.Errorf("failed to read outbox messages: %w", err)
		}

		for _, m := range msgs {
			if herr := fn(ctx, m); herr != nil {
				next := domain.OutboxPending
				if m.Attempts+1 >= maxAttempts {
					next = domain.OutboxFailed
				}
				slog.WarnContext(ctx, "Outbox delivery failed",
					slog.String("message_id", m.ID),
					slog.Int("attempts", m.Attempts+1),
					slog.String("status", string(next)),
					slog.String("error", herr.Error()))
				if _, err := tx.Exec(ctx, `
					UPDATE outbox_messages SET attempts = attempts + 1, status = $1, last_error = $2
					WHERE id = $3`, string(next), herr.Error(), m.ID); err != nil {
					return fmt.Errorf("failed to record outbox failure for %s: %w", m.ID, err)
				}
				continue
			}
			if _, err := tx.Exec(ctx, `
				UPDATE outbox_messages SET attempts = attempts + 1, status = $1, processed_at = NOW()
				WHERE id = $2`, string(domain.OutboxProcessed), m.ID); err != nil {
				return fmt.Errorf("failed to mark outbox message %s processed: %w", m.ID, err)
			}
			delivered++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return delivered, nil
}
