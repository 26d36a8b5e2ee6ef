package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_backend/internal/models"
	"github.com/SscSPs/ledger_backend/internal/utils/mapping"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db DBPool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// GetAccountActivity aggregates postings per account around the reporting period.
// Postings dated after asOf are ignored entirely.
func (r *reportingRepository) GetAccountActivity(ctx context.Context, workplaceID string, periodStart, asOf time.Time) ([]domain.AccountActivity, error) {
	query := `
		SELECT
			a.account_id, a.workplace_id, a.code, a.name, a.account_type, a.is_active,
			a.created_at, a.created_by, a.last_updated_at, a.last_updated_by,
			COALESCE(SUM(p.amount) FILTER (WHERE p.posting_date < $2), 0) AS opening_amount,
			COALESCE(SUM(p.debit) FILTER (WHERE p.posting_date >= $2), 0) AS period_debit,
			COALESCE(SUM(p.credit) FILTER (WHERE p.posting_date >= $2), 0) AS period_credit
		FROM accounts a
		LEFT JOIN ledger_postings p
			ON p.account_id = a.account_id AND p.posting_date <= $3
		WHERE a.workplace_id = $1
		GROUP BY a.account_id
		HAVING a.is_active OR COUNT(p.posting_id) > 0
		ORDER BY a.code
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID, periodStart, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying account activity: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountActivity{}
	for rows.Next() {
		var m models.Account
		var a domain.AccountActivity
		if err := rows.Scan(
			&m.AccountID, &m.WorkplaceID, &m.Code, &m.Name, &m.AccountType, &m.IsActive,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
			&a.OpeningAmount, &a.PeriodDebit, &a.PeriodCredit,
		); err != nil {
			return nil, fmt.Errorf("error scanning account activity row: %w", err)
		}
		a.Account = mapping.ToDomainAccount(m)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account activity rows: %w", err)
	}
	return result, nil
}
