package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	"github.com/SscSPs/ledger_backend/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func TestWorkplaceAuthorizer(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("connection refused")

	tests := []struct {
		name     string
		member   *domain.UserWorkplace
		findErr  error
		required domain.UserWorkplaceRole
		wantErr  error
	}{
		{"admin may approve", &domain.UserWorkplace{Role: domain.RoleAdmin}, nil, domain.RoleAdmin, nil},
		{"member may submit", &domain.UserWorkplace{Role: domain.RoleMember}, nil, domain.RoleMember, nil},
		{"member may not approve", &domain.UserWorkplace{Role: domain.RoleMember}, nil, domain.RoleAdmin, apperrors.ErrForbidden},
		{"removed may not read", &domain.UserWorkplace{Role: domain.RoleRemoved}, nil, domain.RoleReadOnly, apperrors.ErrForbidden},
		{"non member", nil, apperrors.NewNotFoundError("membership"), domain.RoleReadOnly, apperrors.ErrForbidden},
		{"store failure", nil, dbErr, domain.RoleReadOnly, dbErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockMembershipReader)
			if tt.member != nil {
				repo.On("FindUserWorkplaceRole", ctx, "user-1", testWorkplaceID).Return(tt.member, nil)
			} else {
				repo.On("FindUserWorkplaceRole", ctx, "user-1", testWorkplaceID).Return(nil, tt.findErr)
			}

			err := services.NewWorkplaceAuthorizer(repo).AuthorizeUserAction(ctx, "user-1", testWorkplaceID, tt.required)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			repo.AssertExpectations(t)
		})
	}
}
