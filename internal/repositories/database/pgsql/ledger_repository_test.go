package pgsql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPool hands out pgxmock transactions whose SendBatch answers from a script.
// Everything else goes through the pgxmock expectations.
type scriptedPool struct {
	pgxmock.PgxPoolIface
	batches *batchScript
}

func (p *scriptedPool) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := p.PgxPoolIface.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &scriptedTx{Tx: tx, batches: p.batches}, nil
}

type scriptedTx struct {
	pgx.Tx
	batches *batchScript
}

func (t *scriptedTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	return t.batches.next(b)
}

// batchScript records every batch sent and fails statement failAt of batch failBatch.
type batchScript struct {
	sent      []*pgx.Batch
	failBatch int
	failAt    int
	err       error
}

func (s *batchScript) next(b *pgx.Batch) pgx.BatchResults {
	s.sent = append(s.sent, b)
	res := &scriptedResults{}
	if s.err != nil && len(s.sent)-1 == s.failBatch {
		res.failAt, res.err = s.failAt, s.err
	} else {
		res.failAt = -1
	}
	return res
}

type scriptedResults struct {
	calls  int
	failAt int
	err    error
}

func (r *scriptedResults) Exec() (pgconn.CommandTag, error) {
	defer func() { r.calls++ }()
	if r.calls == r.failAt {
		return pgconn.CommandTag{}, r.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *scriptedResults) Query() (pgx.Rows, error) { return nil, errors.New("unexpected batch query") }
func (r *scriptedResults) QueryRow() pgx.Row       { return nil }
func (r *scriptedResults) Close() error            { return nil }

func newScriptedRepo(t *testing.T, script *batchScript) (*PgxLedgerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock := newMockPool(t)
	return newPgxLedgerRepository(&scriptedPool{PgxPoolIface: mock, batches: script}), mock
}

// expectLockedBalances queues the status change and the balance locking of postingBatch.
func expectLockedBalances(mock pgxmock.PgxPoolIface, at time.Time) {
	sorted := []string{"acc-cash", "acc-sales"}
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE journal_entries SET status = \$1`).
		WithArgs("POSTED", "admin", at, "wp-1", "entry-1", "APPROVED", int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO account_balances`).
		WithArgs("wp-1", sorted, at).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectQuery(`SELECT account_id FROM account_balances`).
		WithArgs("wp-1", sorted).
		WillReturnRows(pgxmock.NewRows([]string{"account_id"}).AddRow("acc-cash").AddRow("acc-sales"))
}

func TestApplyPostings_Commits(t *testing.T) {
	script := &batchScript{}
	repo, mock := newScriptedRepo(t, script)
	at := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	batch := postingBatch(at)
	batch.Event = &domain.OutboxMessage{
		ID:          "01HSX3ZQ7K2M4N6P8R0T2V4W6Y",
		AggregateID: "entry-1",
		EventType:   domain.EventEntryPosted,
		Payload:     []byte(`{"entryID":"entry-1"}`),
		Status:      domain.OutboxPending,
		CreatedAt:   at,
	}

	expectLockedBalances(mock, at)
	mock.ExpectExec(`INSERT INTO outbox_messages`).
		WithArgs(batch.Event.ID, "entry-1", "EntryPosted", []byte(`{"entryID":"entry-1"}`), "PENDING", 0, at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.ApplyPostings(context.Background(), batch)

	require.NoError(t, err)
	require.Len(t, script.sent, 2)
	assert.Len(t, script.sent[0].QueuedQueries, 2, "one insert per posting")
	balances := script.sent[1].QueuedQueries
	require.Len(t, balances, 2)
	assert.Equal(t, "acc-cash", balances[0].Arguments[2], "balances update in account order")
	assert.Equal(t, "acc-sales", balances[1].Arguments[2])
	assert.True(t, balances[0].Arguments[0].(decimal.Decimal).Equal(decimal.NewFromInt(500)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPostings_WriteFailureRollsBack(t *testing.T) {
	tests := []struct {
		name      string
		failBatch int
		failAt    int
		err       error
		wantErr   string
	}{
		{
			name:      "posting insert",
			failBatch: 0,
			failAt:    1,
			err:       &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"},
			wantErr:   "failed to insert ledger postings (item 1)",
		},
		{
			name:      "balance update",
			failBatch: 1,
			failAt:    0,
			err:       errors.New("connection reset by peer"),
			wantErr:   "failed to update account balances (item 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := &batchScript{failBatch: tt.failBatch, failAt: tt.failAt, err: tt.err}
			repo, mock := newScriptedRepo(t, script)
			at := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

			expectLockedBalances(mock, at)
			mock.ExpectRollback()

			err := repo.ApplyPostings(context.Background(), postingBatch(at))

			assert.ErrorContains(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.err)
			assert.Len(t, script.sent, tt.failBatch+1, "nothing is sent after the failing batch")
			assert.NoError(t, mock.ExpectationsWereMet(), "rolled back without commit")
		})
	}
}
