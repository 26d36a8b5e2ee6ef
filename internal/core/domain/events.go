package domain

import (
	"encoding/json"
	"time"
)

// EventType names a domain event emitted by the ledger.
type EventType string

const (
	EventEntryPosted EventType = "EntryPosted"
	EventEntryVoided EventType = "EntryVoided"
)

// LedgerEvent is the payload of EntryPosted and EntryVoided.
type LedgerEvent struct {
	Type        EventType       `json:"type"`
	EntryID     string          `json:"entryID"`
	WorkplaceID string          `json:"workplaceID"`
	Reference   string          `json:"reference"`
	Actor       string          `json:"actor"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Reason      string          `json:"reason,omitempty"`
	Postings    []LedgerPosting `json:"postings"`
}

// OutboxStatus is the delivery state of an outbox message.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxProcessed OutboxStatus = "PROCESSED"
	OutboxFailed    OutboxStatus = "FAILED"
)

// OutboxMessage is a domain event persisted in the same transaction that produced it.
type OutboxMessage struct {
	ID          string          `json:"id"`
	AggregateID string          `json:"aggregateID"`
	EventType   EventType       `json:"eventType"`
	Payload     json.RawMessage `json:"payload"`
	Status      OutboxStatus    `json:"status"`
	Attempts    int             `json:"attempts"`
	CreatedAt   time.Time       `json:"createdAt"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
}

// Decode unmarshals the message payload into a LedgerEvent.
func (m OutboxMessage) Decode() (LedgerEvent, error) {
	var ev LedgerEvent
	err := json.Unmarshal(m.Payload, &ev)
	return ev, err
}
