package repositories

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// WorkplaceMembershipReader looks up a user's role in a workplace.
type WorkplaceMembershipReader interface {
	// FindUserWorkplaceRole returns apperrors.ErrNotFound when the user is not a member.
	FindUserWorkplaceRole(ctx context.Context, userID, workplaceID string) (*domain.UserWorkplace, error)
}
