package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

// PgxWorkplaceRepository reads workplace memberships.
type PgxWorkplaceRepository struct {
	BaseRepository
}

// newPgxWorkplaceRepository creates a new repository for workplace membership data.
func newPgxWorkplaceRepository(pool DBPool) *PgxWorkplaceRepository {
	return &PgxWorkplaceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WorkplaceMembershipReader = (*PgxWorkplaceRepository)(nil)

// FindUserWorkplaceRole returns the user's membership, or ErrNotFound when there is none.
func (r *PgxWorkplaceRepository) FindUserWorkplaceRole(ctx context.Context, userID, workplaceID string) (*domain.UserWorkplace, error) {
	query := `SELECT user_id, workplace_id, role FROM user_workplaces WHERE user_id = $1 AND workplace_id = $2`

	var m domain.UserWorkplace
	var role string
	err := r.Pool.QueryRow(ctx, query, userID, workplaceID).Scan(&m.UserID, &m.WorkplaceID, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s is not a member of workplace %s", apperrors.ErrNotFound, userID, workplaceID)
		}
		return nil, apperrors.NewAppError(500, "failed to query user workplace role", err)
	}
	m.Role = domain.UserWorkplaceRole(role)
	return &m, nil
}
