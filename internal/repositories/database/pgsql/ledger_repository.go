package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_backend/internal/models"
	"github.com/SscSPs/ledger_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// PgxLedgerRepository owns the posting log, the balance cache and the outbox writes.
type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger postings.
func newPgxLedgerRepository(pool DBPool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const postingColumns = `posting_id, entry_id, line_id, account_id, workplace_id, posting_date, debit, credit, amount, kind, posted_at, posted_by`

// ApplyPostings performs a post or void in a single transaction.
// The entry row is updated first so a concurrent poster of the same entry blocks on it and then
// loses the version check. Balance rows are locked in ascending account id order.
func (r *PgxLedgerRepository) ApplyPostings(ctx context.Context, batch domain.PostingBatch) error {
	deltas := batch.BalanceDeltas()
	accountIDs := make([]string, 0, len(deltas))
	for id := range deltas {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	return r.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := transitionStatus(ctx, tx, batch.WorkplaceID, batch.Change); err != nil {
			return err
		}

		if err := lockBalances(ctx, tx, batch.WorkplaceID, accountIDs, batch.Change.At); err != nil {
			return err
		}

		postings := &pgx.Batch{}
		insertPosting := `INSERT INTO ledger_postings (` + postingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		for _, p := range batch.Postings {
			m := mapping.ToModelLedgerPosting(p)
			postings.Queue(insertPosting, m.PostingID, m.EntryID, m.LineID, m.AccountID, m.WorkplaceID,
				m.PostingDate, m.Debit, m.Credit, m.Amount, m.Kind, m.PostedAt, m.PostedBy)
		}
		if err := execBatch(ctx, tx, postings, "insert ledger postings"); err != nil {
			return err
		}

		balances := &pgx.Batch{}
		updateBalance := `
			UPDATE account_balances
			SET balance = balance + $1, last_posted_at = $2, version = version + 1
			WHERE account_id = $3`
		for _, id := range accountIDs {
			balances.Queue(updateBalance, deltas[id], batch.Change.At, id)
		}
		if err := execBatch(ctx, tx, balances, "update account balances"); err != nil {
			return err
		}

		if batch.Event != nil {
			ev := batch.Event
			_, err := tx.Exec(ctx, `
				INSERT INTO outbox_messages (id, aggregate_id, event_type, payload, status, attempts, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				ev.ID, ev.AggregateID, string(ev.EventType), []byte(ev.Payload), string(ev.Status), ev.Attempts, ev.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert outbox message for entry %s: %w", ev.AggregateID, err)
			}
		}
		return nil
	})
}

// lockBalances makes sure every account has a balance row and locks them in the given order.
// It fails if any account does not belong to the workplace.
func lockBalances(ctx context.Context, tx pgx.Tx, workplaceID string, accountIDs []string, at time.Time) error {
	if len(accountIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO account_balances (account_id, workplace_id, balance, last_posted_at, version)
		SELECT a.account_id, a.workplace_id, 0, $3, 0
		FROM accounts a
		WHERE a.workplace_id = $1 AND a.account_id = ANY($2)
		ORDER BY a.account_id
		ON CONFLICT (account_id) DO NOTHING`, workplaceID, accountIDs, at)
	if err != nil {
		return fmt.Errorf("failed to initialise account balances: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT account_id FROM account_balances
		WHERE workplace_id = $1 AND account_id = ANY($2)
		ORDER BY account_id
		FOR UPDATE`, workplaceID, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to lock account balances: %w", err)
	}
	locked, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to lock account balances: %w", err)
	}
	if len(locked) != len(accountIDs) {
		return fmt.Errorf("%w: %d of %d accounts not found in workplace %s",
			apperrors.ErrNotFound, len(accountIDs)-len(locked), len(accountIDs), workplaceID)
	}
	return nil
}

// ListPostingsByEntry returns the postings of an entry in the order they were written.
func (r *PgxLedgerRepository) ListPostingsByEntry(ctx context.Context, workplaceID, entryID string) ([]domain.LedgerPosting, error) {
	query := `SELECT ` + postingColumns + ` FROM ledger_postings WHERE workplace_id = $1 AND entry_id = $2 ORDER BY posted_at, kind, line_id`
	rows, err := r.Pool.Query(ctx, query, workplaceID, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query postings of entry "+entryID, err)
	}
	defer rows.Close()

	postings := make([]domain.LedgerPosting, 0)
	for rows.Next() {
		var m models.LedgerPosting
		if err := rows.Scan(&m.PostingID, &m.EntryID, &m.LineID, &m.AccountID, &m.WorkplaceID, &m.PostingDate,
			&m.Debit, &m.Credit, &m.Amount, &m.Kind, &m.PostedAt, &m.PostedBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger posting", err)
		}
		postings = append(postings, mapping.ToDomainLedgerPosting(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger postings", err)
	}
	return postings, nil
}

// FindBalances returns the cached balances of the given accounts. Accounts never posted to are absent.
func (r *PgxLedgerRepository) FindBalances(ctx context.Context, workplaceID string, accountIDs []string) (map[string]domain.AccountBalance, error) {
	result := make(map[string]domain.AccountBalance, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}
	rows, err := r.Pool.Query(ctx, `
		SELECT account_id, workplace_id, balance, last_posted_at, version
		FROM account_balances
		WHERE workplace_id = $1 AND account_id = ANY($2)`, workplaceID, accountIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account balances", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b domain.AccountBalance
		if err := rows.Scan(&b.AccountID, &b.WorkplaceID, &b.Balance, &b.LastPostedAt, &b.Version); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account balance", err)
		}
		result[b.AccountID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account balances", err)
	}
	return result, nil
}
