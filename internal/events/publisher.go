package events

import (
	"context"
	"errors"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
)

// MultiPublisher publishes every event to each of its publishers in order.
// A message counts as delivered only if every publisher accepted it.
type MultiPublisher []portssvc.EventPublisher

var _ portssvc.EventPublisher = (MultiPublisher)(nil)

// Publish calls every publisher and joins their errors.
func (m MultiPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
