package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
)

// workplaceAuthorizer resolves approval and posting authority from workplace memberships.
type workplaceAuthorizer struct {
	BaseService
	membershipRepo portsrepo.WorkplaceMembershipReader
}

// NewWorkplaceAuthorizer creates an authorizer backed by the membership store.
func NewWorkplaceAuthorizer(repo portsrepo.WorkplaceMembershipReader) portssvc.WorkplaceAuthorizerSvc {
	return &workplaceAuthorizer{membershipRepo: repo}
}

var _ portssvc.WorkplaceAuthorizerSvc = (*workplaceAuthorizer)(nil)

// AuthorizeUserAction checks whether a user holds requiredRole (or higher) in the workplace.
func (s *workplaceAuthorizer) AuthorizeUserAction(ctx context.Context, userID, workplaceID string, requiredRole domain.UserWorkplaceRole) error {
	membership, err := s.membershipRepo.FindUserWorkplaceRole(ctx, userID, workplaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of workplace",
				slog.String("user_id", userID),
				slog.String("workplace_id", workplaceID))
			return fmt.Errorf("%w: user is not a member of workplace %s", apperrors.ErrForbidden, workplaceID)
		}
		s.LogError(ctx, err, "Failed to find user workplace role",
			slog.String("user_id", userID),
			slog.String("workplace_id", workplaceID))
		return err
	}

	if !membership.Role.Satisfies(requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("workplace_id", workplaceID),
			slog.String("user_role", string(membership.Role)),
			slog.String("required_role", string(requiredRole)))
		return fmt.Errorf("%w: role %s does not grant %s", apperrors.ErrForbidden, membership.Role, requiredRole)
	}
	return nil
}
