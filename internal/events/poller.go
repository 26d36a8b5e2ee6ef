package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
)

// PollerConfig controls how often and how much of the outbox is drained.
type PollerConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Poller relays outbox messages written by the ledger poster to a publisher.
type Poller struct {
	outboxRepo  portsrepo.OutboxRepository
	publisher   portssvc.EventPublisher
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

// NewPoller creates a poller.
func NewPoller(cfg PollerConfig, outboxRepo portsrepo.OutboxRepository, publisher portssvc.EventPublisher, logger *slog.Logger) *Poller {
	return &Poller{
		outboxRepo:  outboxRepo,
		publisher:   publisher,
		logger:      logger,
		interval:    cfg.Interval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.interval.String(),
		"batch_size", p.batchSize,
		"max_attempts", p.maxAttempts)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping due to context cancellation")
			return
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("Error while processing pending outbox messages", "error", err)
			}
		}
	}
}

// ProcessOnce drains one batch and returns the number of messages delivered.
func (p *Poller) ProcessOnce(ctx context.Context) (int, error) {
	delivered, err := p.outboxRepo.ProcessPending(ctx, p.batchSize, p.maxAttempts, p.deliver)
	if err != nil {
		return delivered, fmt.Errorf("failed to process pending outbox messages: %w", err)
	}
	if delivered > 0 {
		p.logger.Info("Delivered outbox messages", "count", delivered)
	}
	return delivered, nil
}

func (p *Poller) deliver(ctx context.Context, msg domain.OutboxMessage) error {
	event, err := msg.Decode()
	if err != nil {
		return fmt.Errorf("unmarshal payload for outbox %s failed: %w", msg.ID, err)
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("Failed to publish outbox message",
			"outbox_id", msg.ID,
			"entry_id", msg.AggregateID,
			"attempts", msg.Attempts,
			"error", err)
		return err
	}
	return nil
}
