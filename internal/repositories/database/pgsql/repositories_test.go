package pgsql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestTransitionStatus_RejectRecordsReason(t *testing.T) {
	mock := newMockPool(t)
	repo := newPgxJournalRepository(mock)
	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE journal_entries SET status = \$1, .*rejection_reason = \$8 WHERE workplace_id = \$4`).
		WithArgs("REJECTED", "admin", at, "wp-1", "entry-1", "PENDING_APPROVAL", int64(2), "wrong period").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.TransitionStatus(context.Background(), "wp-1", domain.StatusChange{
		EntryID:         "entry-1",
		From:            domain.StatusPendingApproval,
		To:              domain.StatusRejected,
		ExpectedVersion: 2,
		Actor:           "admin",
		At:              at,
		Reason:          "wrong period",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatus_StaleVersion(t *testing.T) {
	mock := newMockPool(t)
	repo := newPgxJournalRepository(mock)
	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE journal_entries SET status = \$1`).
		WithArgs("APPROVED", "admin", at, "wp-1", "entry-1", "PENDING_APPROVAL", int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.TransitionStatus(context.Background(), "wp-1", domain.StatusChange{
		EntryID:         "entry-1",
		From:            domain.StatusPendingApproval,
		To:              domain.StatusApproved,
		ExpectedVersion: 2,
		Actor:           "admin",
		At:              at,
	})

	var cme *apperrors.ConcurrentModificationError
	require.True(t, errors.As(err, &cme))
	assert.Equal(t, "PENDING_APPROVAL", cme.Expected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func postingBatch(at time.Time) domain.PostingBatch {
	return domain.PostingBatch{
		WorkplaceID: "wp-1",
		Change: domain.StatusChange{
			EntryID:         "entry-1",
			From:            domain.StatusApproved,
			To:              domain.StatusPosted,
			ExpectedVersion: 3,
			Actor:           "admin",
			At:              at,
		},
		Postings: []domain.LedgerPosting{
			{PostingID: "p1", EntryID: "entry-1", LineID: "l1", AccountID: "acc-sales", WorkplaceID: "wp-1", Amount: decimal.NewFromInt(500)},
			{PostingID: "p2", EntryID: "entry-1", LineID: "l2", AccountID: "acc-cash", WorkplaceID: "wp-1", Amount: decimal.NewFromInt(500)},
		},
	}
}

func TestApplyPostings_LostRaceRollsBack(t *testing.T) {
	mock := newMockPool(t)
	repo := newPgxLedgerRepository(mock)
	at := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE journal_entries SET status = \$1`).
		WithArgs("POSTED", "admin", at, "wp-1", "entry-1", "APPROVED", int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.ApplyPostings(context.Background(), postingBatch(at))

	var cme *apperrors.ConcurrentModificationError
	assert.True(t, errors.As(err, &cme))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPostings_LocksBalancesInAccountOrder(t *testing.T) {
	mock := newMockPool(t)
	repo := newPgxLedgerRepository(mock)
	at := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	sorted := []string{"acc-cash", "acc-sales"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE journal_entries SET status = \$1`).
		WithArgs("POSTED", "admin", at, "wp-1", "entry-1", "APPROVED", int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO account_balances`).
		WithArgs("wp-1", sorted, at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// acc-sales belongs to another workplace, so only one row comes back.
	mock.ExpectQuery(`SELECT account_id FROM account_balances`).
		WithArgs("wp-1", sorted).
		WillReturnRows(pgxmock.NewRows([]string{"account_id"}).AddRow("acc-cash"))
	mock.ExpectRollback()

	err := repo.ApplyPostings(context.Background(), postingBatch(at))

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBalances(t *testing.T) {
	mock := newMockPool(t)
	repo := newPgxLedgerRepository(mock)
	at := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT account_id, workplace_id, balance, last_posted_at, version`).
		WithArgs("wp-1", []string{"acc-cash", "acc-none"}).
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "workplace_id", "balance", "last_posted_at", "version"}).
			AddRow("acc-cash", "wp-1", decimal.NewFromInt(500), at, int64(2)))

	balances, err := repo.FindBalances(context.Background(), "wp-1", []string{"acc-cash", "acc-none"})

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances["acc-cash"].Balance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, int64(2), balances["acc-cash"].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserWorkplaceRole(t *testing.T) {
	mock := newMockPool(t)
	repo := newPgxWorkplaceRepository(mock)

	mock.ExpectQuery(`SELECT user_id, workplace_id, role FROM user_workplaces`).
		WithArgs("u1", "wp-1").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "workplace_id", "role"}).AddRow("u1", "wp-1", "ADMIN"))
	mock.ExpectQuery(`SELECT user_id, workplace_id, role FROM user_workplaces`).
		WithArgs("u2", "wp-1").
		WillReturnError(pgx.ErrNoRows)

	m, err := repo.FindUserWorkplaceRole(context.Background(), "u1", "wp-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, m.Role)

	_, err = repo.FindUserWorkplaceRole(context.Background(), "u2", "wp-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
