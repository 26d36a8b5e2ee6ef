package pgsql

import (
	"context"
	"log/slog"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_backend/internal/models"
	"github.com/SscSPs/ledger_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// PgxAccountRepository is the read-only account registry backed by the accounts table.
type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool DBPool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRegistry = (*PgxAccountRepository)(nil)

const accountSelectQuery = `
SELECT account_id, workplace_id, code, name, account_type, is_active,
	created_at, created_by, last_updated_at, last_updated_by
FROM accounts
`

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, filter string, args ...any) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, accountSelectQuery+filter, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	defer rows.Close()

	modelAccounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect account rows", err)
	}

	accounts := make([]domain.Account, len(modelAccounts))
	for i, m := range modelAccounts {
		accounts[i] = mapping.ToDomainAccount(m)
	}
	return accounts, nil
}

// FindAccountsByIDs retrieves the workplace's accounts with the given ids.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, workplaceID string, accountIDs []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}
	accounts, err := r.queryAccounts(ctx, "WHERE workplace_id = $1 AND account_id = ANY($2)", workplaceID, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.AccountID] = a
	}
	if len(result) != len(accountIDs) {
		slog.WarnContext(ctx, "Some requested accounts were not found",
			slog.String("workplace_id", workplaceID),
			slog.Int("requested", len(accountIDs)),
			slog.Int("found", len(result)))
	}
	return result, nil
}

// FindAccountsByCodes retrieves the workplace's accounts with the given codes.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, workplaceID string, codes []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(codes))
	if len(codes) == 0 {
		return result, nil
	}
	accounts, err := r.queryAccounts(ctx, "WHERE workplace_id = $1 AND code = ANY($2)", workplaceID, codes)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.Code] = a
	}
	return result, nil
}

// ListAccounts returns every account of the workplace ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, workplaceID string) ([]domain.Account, error) {
	return r.queryAccounts(ctx, "WHERE workplace_id = $1 ORDER BY code", workplaceID)
}
