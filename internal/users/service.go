package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
)

// Service exposes the console-facing account management operations.
type Service interface {
	ListAll(ctx context.Context) ([]UserDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Update(ctx context.Context, actor enums.UserRole, id uuid.UUID, input UpdateInput) (*UserDTO, error)
	Deactivate(ctx context.Context, actor enums.UserRole, id uuid.UUID) error
	Reactivate(ctx context.Context, actor enums.UserRole, id uuid.UUID) error
}

// UpdateInput carries partial account edits; nil fields are left untouched.
type UpdateInput struct {
	Name    *string
	Phone   *string
	Address *string
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.UserStatus) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type service struct {
	repo repository
}

// NewService constructs an account management service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListAll(ctx context.Context) ([]UserDTO, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, *FromModel(&users[i]))
	}
	return dtos, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, actor enums.UserRole, id uuid.UUID, input UpdateInput) (*UserDTO, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Address != nil {
		user.Address = input.Address
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) Deactivate(ctx context.Context, actor enums.UserRole, id uuid.UUID) error {
	return s.setStatus(ctx, actor, id, enums.UserStatusDeactivated)
}

func (s *service) Reactivate(ctx context.Context, actor enums.UserRole, id uuid.UUID) error {
	return s.setStatus(ctx, actor, id, enums.UserStatusActive)
}

func (s *service) setStatus(ctx context.Context, actor enums.UserRole, id uuid.UUID, status enums.UserStatus) error {
	if !actor.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	// Console operators cannot lock out other operators.
	if status == enums.UserStatusDeactivated && user.Role.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot deactivate a staff account")
	}
	if user.Status == status {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user status")
	}
	return nil
}
