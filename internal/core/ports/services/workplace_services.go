package services

import (
	"context"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// WorkplaceAuthorizerSvc decides whether a user holds a role in a workplace.
// It returns an error matching apperrors.ErrForbidden on denial.
type WorkplaceAuthorizerSvc interface {
	AuthorizeUserAction(ctx context.Context, userID, workplaceID string, requiredRole domain.UserWorkplaceRole) error
}
