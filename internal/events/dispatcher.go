package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
)

// Subscriber reacts to ledger events inside the process, e.g. a read-model projection.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, event domain.LedgerEvent) error
}

// Dispatcher fans events out to in-process subscribers.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	logger      *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

var _ portssvc.EventPublisher = (*Dispatcher)(nil)

// Subscribe registers a subscriber for all subsequent events.
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, s)
}

// Publish hands the event to every subscriber. Subscribers must be idempotent: a failure in
// one causes the whole message to be redelivered to all of them.
func (d *Dispatcher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	d.mu.RLock()
	subs := append([]Subscriber(nil), d.subscribers...)
	d.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.Handle(ctx, event); err != nil {
			d.logger.Error("Subscriber failed to handle ledger event",
				"subscriber", s.Name(),
				"event_type", string(event.Type),
				"entry_id", event.EntryID,
				"error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
