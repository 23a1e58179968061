package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// UserService covers user directory access and role administration.
type UserService struct {
	users repository.UserRepository
	audit *AuditService
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, audit *AuditService) *UserService {
	return &UserService{users: users, audit: audit}
}

// List returns all users. Staff only.
func (s *UserService) List(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if !auth.Decide(actor.Role, auth.ActionUserList, 0, actor.ID) {
		return nil, apperrors.NewForbidden("staff role required")
	}
	return s.users.List(ctx)
}

// ChangeRole updates a user's role. Admin only.
func (s *UserService) ChangeRole(ctx context.Context, actor *domain.User, userID int64, role domain.Role) (*domain.User, error) {
	if !auth.Decide(actor.Role, auth.ActionRoleChange, 0, actor.ID) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewInvalidInput("unknown role")
	}

	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}
	if err := s.audit.Record(ctx, actor.ID, domain.AuditActionSetRole, "user", userID, string(role)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}
