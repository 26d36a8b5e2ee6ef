package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

const (
	// PostingsCollectionName holds one document per ledger posting.
	PostingsCollectionName = "ledger_postings"
	// EntryStatusCollectionName holds the latest ledger status of each entry.
	EntryStatusCollectionName = "entry_status"
)

// postingDocument is the read-model shape of a posting. Amounts are stored as strings
// so they round-trip without float loss.
type postingDocument struct {
	PostingID   string    `bson:"_id"`
	EntryID     string    `bson:"entry_id"`
	WorkplaceID string    `bson:"workplace_id"`
	AccountID   string    `bson:"account_id"`
	LineID      string    `bson:"line_id"`
	PostingDate time.Time `bson:"posting_date"`
	Debit       string    `bson:"debit"`
	Credit      string    `bson:"credit"`
	Amount      string    `bson:"amount"`
	Kind        string    `bson:"kind"`
	PostedAt    time.Time `bson:"posted_at"`
	PostedBy    string    `bson:"posted_by"`
}

// PostingProjection maintains a MongoDB read model of postings and entry ledger status.
// Writes are upserts so redelivered events are harmless.
type PostingProjection struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPostingProjection creates the projection over a database.
func NewPostingProjection(logger *slog.Logger, db *mongo.Database) *PostingProjection {
	return &PostingProjection{db: db, logger: logger}
}

// Name identifies the projection in dispatcher logs.
func (p *PostingProjection) Name() string { return "mongo-posting-projection" }

// Handle applies one EntryPosted or EntryVoided event.
func (p *PostingProjection) Handle(ctx context.Context, event domain.LedgerEvent) error {
	postings := p.db.Collection(PostingsCollectionName)
	upsert := options.Update().SetUpsert(true)

	for _, posting := range event.Postings {
		doc := toPostingDocument(posting)
		_, err := postings.UpdateOne(ctx, bson.M{"_id": doc.PostingID}, bson.M{"$set": doc}, upsert)
		if err != nil {
			p.logger.Error("Failed to project ledger posting",
				"posting_id", posting.PostingID,
				"entry_id", event.EntryID,
				"error", err)
			return fmt.Errorf("failed to project posting %s: %w", posting.PostingID, err)
		}
	}

	status := domain.StatusPosted
	if event.Type == domain.EventEntryVoided {
		status = domain.StatusVoided
	}
	update := bson.M{
		"$set": bson.M{
			"workplace_id": event.WorkplaceID,
			"reference":    event.Reference,
			"status":       status.String(),
			"updated_at":   event.OccurredAt,
			"updated_by":   event.Actor,
			"reason":       event.Reason,
		},
	}
	// Events can arrive out of order after retries; never let POSTED overwrite VOIDED.
	filter := bson.M{"_id": event.EntryID}
	if status == domain.StatusPosted {
		filter["status"] = bson.M{"$ne": domain.StatusVoided.String()}
	}
	_, err := p.db.Collection(EntryStatusCollectionName).UpdateOne(ctx, filter, update, upsert)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		p.logger.Error("Failed to project entry status",
			"entry_id", event.EntryID,
			"status", status.String(),
			"error", err)
		return fmt.Errorf("failed to project entry status %s: %w", event.EntryID, err)
	}

	p.logger.Debug("Projected ledger event",
		"entry_id", event.EntryID,
		"event_type", string(event.Type),
		"postings", len(event.Postings))
	return nil
}

func toPostingDocument(p domain.LedgerPosting) postingDocument {
	return postingDocument{
		PostingID:   p.PostingID,
		EntryID:     p.EntryID,
		WorkplaceID: p.WorkplaceID,
		AccountID:   p.AccountID,
		LineID:      p.LineID,
		PostingDate: p.PostingDate,
		Debit:       p.Debit.String(),
		Credit:      p.Credit.String(),
		Amount:      p.Amount.String(),
		Kind:        string(p.Kind),
		PostedAt:    p.PostedAt,
		PostedBy:    p.PostedBy,
	}
}
