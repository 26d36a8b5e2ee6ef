package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_backend/internal/models"
	"github.com/SscSPs/ledger_backend/internal/utils/mapping"
	"github.com/SscSPs/ledger_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

// PgxJournalRepository stores journal entry headers and lines.
type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries.
func newPgxJournalRepository(pool DBPool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, workplace_id, reference, entry_date, description, status, duplicated_from_id, version,
	requested_by, requested_at, approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	posted_by, posted_at, voided_by, voided_at, void_reason,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, line_number, account_id, account_code, description, debit, credit`

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID, &m.WorkplaceID, &m.Reference, &m.EntryDate, &m.Description, &m.Status, &m.DuplicatedFromID, &m.Version,
		&m.RequestedBy, &m.RequestedAt, &m.ApprovedBy, &m.ApprovedAt, &m.RejectedBy, &m.RejectedAt, &m.RejectionReason,
		&m.PostedBy, &m.PostedAt, &m.VoidedBy, &m.VoidedAt, &m.VoidReason,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func queueLineInserts(batch *pgx.Batch, lines []domain.JournalEntryLine) {
	query := `INSERT INTO journal_entry_lines (` + lineColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, l := range lines {
		m := mapping.ToModelJournalEntryLine(l)
		batch.Queue(query, m.LineID, m.EntryID, m.LineNumber, m.AccountID, m.AccountCode, m.Description, m.Debit, m.Credit)
	}
}

// CreateEntry inserts the entry header and all of its lines in one transaction.
func (r *PgxJournalRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	return r.ExecuteTx(ctx, func(tx pgx.Tx) error {
		query := `INSERT INTO journal_entries (` + entryColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
		_, err := tx.Exec(ctx, query,
			m.EntryID, m.WorkplaceID, m.Reference, m.EntryDate, m.Description, m.Status, m.DuplicatedFromID, m.Version,
			m.RequestedBy, m.RequestedAt, m.ApprovedBy, m.ApprovedAt, m.RejectedBy, m.RejectedAt, m.RejectionReason,
			m.PostedBy, m.PostedAt, m.VoidedBy, m.VoidedAt, m.VoidReason,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, m.EntryID)
			}
			return fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err)
		}

		if len(entry.Lines) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		queueLineInserts(batch, entry.Lines)
		return execBatch(ctx, tx, batch, "insert journal entry lines")
	})
}

// ReplaceDraft overwrites a draft's header and lines if it is still at expectedVersion.
func (r *PgxJournalRepository) ReplaceDraft(ctx context.Context, entry domain.JournalEntry, expectedVersion int64) error {
	return r.ExecuteTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE journal_entries
			SET reference = $1, entry_date = $2, description = $3, version = $4,
				last_updated_by = $5, last_updated_at = $6
			WHERE workplace_id = $7 AND entry_id = $8 AND status = $9 AND version = $10`
		ct, err := tx.Exec(ctx, query,
			entry.Reference, entry.EntryDate, entry.Description, entry.Version,
			entry.Audit.LastUpdatedBy, entry.Audit.LastUpdatedAt,
			entry.WorkplaceID, entry.EntryID, domain.StatusDraft.String(), expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to update journal entry %s: %w", entry.EntryID, err)
		}
		if ct.RowsAffected() == 0 {
			return &apperrors.ConcurrentModificationError{EntryID: entry.EntryID, Expected: domain.StatusDraft.String()}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1`, entry.EntryID); err != nil {
			return fmt.Errorf("failed to delete lines of journal entry %s: %w", entry.EntryID, err)
		}
		if len(entry.Lines) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		queueLineInserts(batch, entry.Lines)
		return execBatch(ctx, tx, batch, "insert journal entry lines")
	})
}

// TransitionStatus persists an optimistic status change.
func (r *PgxJournalRepository) TransitionStatus(ctx context.Context, workplaceID string, change domain.StatusChange) error {
	return transitionStatus(ctx, r.Pool, workplaceID, change)
}

// transitionStatus moves the entry from change.From to change.To if nobody else has touched it,
// stamping the audit columns belonging to the target status.
func transitionStatus(ctx context.Context, q Querier, workplaceID string, change domain.StatusChange) error {
	set := []string{"status = $1", "version = version + 1", "last_updated_by = $2", "last_updated_at = $3"}
	args := []any{change.To.String(), change.Actor, change.At, workplaceID, change.EntryID, change.From.String(), change.ExpectedVersion}

	switch change.To {
	case domain.StatusPendingApproval:
		set = append(set, "requested_by = $2", "requested_at = $3")
	case domain.StatusApproved:
		set = append(set, "approved_by = $2", "approved_at = $3")
	case domain.StatusRejected:
		set = append(set, "rejected_by = $2", "rejected_at = $3", "rejection_reason = $8")
		args = append(args, change.Reason)
	case domain.StatusPosted:
		set = append(set, "posted_by = $2", "posted_at = $3")
	case domain.StatusVoided:
		set = append(set, "voided_by = $2", "voided_at = $3", "void_reason = $8")
		args = append(args, change.Reason)
	}

	query := `UPDATE journal_entries SET ` + strings.Join(set, ", ") +
		` WHERE workplace_id = $4 AND entry_id = $5 AND status = $6 AND version = $7`
	ct, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update status of journal entry %s: %w", change.EntryID, err)
	}
	if ct.RowsAffected() == 0 {
		return &apperrors.ConcurrentModificationError{EntryID: change.EntryID, Expected: change.From.String()}
	}
	return nil
}

// FindEntryByID retrieves an entry and its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, workplaceID, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE workplace_id = $1 AND entry_id = $2`
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, workplaceID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal entry " + entryID)
		}
		return nil, apperrors.NewAppError(500, "failed to query journal entry "+entryID, err)
	}

	lines, err := r.findLines(ctx, []string{entryID})
	if err != nil {
		return nil, err
	}
	entry, err := mapping.ToDomainJournalEntry(m, lines[entryID])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to map journal entry", err)
	}
	return &entry, nil
}

// findLines loads the lines of the given entries, grouped by entry and ordered by line number.
func (r *PgxJournalRepository) findLines(ctx context.Context, entryIDs []string) (map[string][]models.JournalEntryLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_number`
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journal entry lines", err)
	}
	defer rows.Close()

	result := make(map[string][]models.JournalEntryLine, len(entryIDs))
	for rows.Next() {
		var l models.JournalEntryLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.LineNumber, &l.AccountID, &l.AccountCode, &l.Description, &l.Debit, &l.Credit); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal entry line", err)
		}
		result[l.EntryID] = append(result[l.EntryID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal entry lines", err)
	}
	return result, nil
}

// ListEntries returns a page of entries ordered by entry date, then creation time, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, workplaceID string, filter portsrepo.EntryFilter) ([]domain.JournalEntry, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells us whether a next page exists.
	fetchLimit := limit + 1

	where := []string{"workplace_id = $1"}
	args := []any{workplaceID}
	if filter.Status != nil {
		args = append(args, filter.Status.String())
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.After != nil {
		args = append(args, filter.After.EntryDate, filter.After.CreatedAt, filter.After.EntryID)
		n := len(args)
		where = append(where, fmt.Sprintf("(entry_date, created_at, entry_id) < ($%d, $%d, $%d)", n-2, n-1, n))
	}
	args = append(args, fetchLimit)

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries for workplace "+workplaceID, err)
	}
	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		modelEntries = append(modelEntries, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextToken *string
	if len(modelEntries) > limit {
		last := modelEntries[limit-1]
		token := pagination.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID}.Encode()
		nextToken = &token
		modelEntries = modelEntries[:limit]
	}
	if len(modelEntries) == 0 {
		return []domain.JournalEntry{}, nil, nil
	}

	ids := make([]string, len(modelEntries))
	for i, m := range modelEntries {
		ids[i] = m.EntryID
	}
	lines, err := r.findLines(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]domain.JournalEntry, len(modelEntries))
	for i, m := range modelEntries {
		entries[i], err = mapping.ToDomainJournalEntry(m, lines[m.EntryID])
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to map journal entry", err)
		}
	}
	return entries, nextToken, nil
}
