package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/config"
	"github.com/cellflip/cellflip-backend/pkg/db"
	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
	"github.com/cellflip/cellflip-backend/pkg/security"
)

// Service defines account operations. FindRider doubles as the rider
// directory consumed by the trade-in assignment flow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*UserView, error)
	Get(ctx context.Context, id uuid.UUID) (*UserView, error)
	ListByRole(ctx context.Context, role enums.ActorRole, params pagination.Params) (*UserList, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	FindRider(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo     Repository
	password config.PasswordConfig
}

// NewService builds the users service.
func NewService(repo Repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, password: password}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*UserView, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Role.IsValid() || input.Role == enums.ActorRoleSystem {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be seller, admin or rider")
	}

	user := &models.User{
		Name:     strings.TrimSpace(input.Name),
		Role:     input.Role,
		IsActive: true,
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != "" {
			user.Email = &email
		}
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone != "" {
			user.Phone = &phone
		}
	}

	switch input.Role {
	case enums.ActorRoleRider:
		// Riders authenticate with phone OTP only.
		if user.Phone == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "riders require a phone number")
		}
	default:
		if user.Email == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required for this role")
		}
		if len(input.Password) < 8 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
		}
		hash, err := security.HashPassword(input.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email or phone already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	view := NewUserView(*created)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserView, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewUserView(*user)
	return &view, nil
}

func (s *service) ListByRole(ctx context.Context, role enums.ActorRole, params pagination.Params) (*UserList, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role is invalid")
	}
	list, err := s.repo.ListByRole(ctx, role, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return list, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": active}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return nil
}

// FindRider resolves an account that can take pickup assignments. Inactive
// or non-rider accounts are rejected so assignment cannot target them.
func (s *service) FindRider(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.ActorRoleRider {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user is not a rider")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rider account is deactivated")
	}
	return user, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.Find(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
