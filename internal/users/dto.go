package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
)

// CreateInput captures an admin-provisioned account (riders, other admins).
type CreateInput struct {
	Name     string
	Email    *string
	Phone    *string
	Password string
	Role     enums.ActorRole
}

// UserView is the API shape of one user.
type UserView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Email       *string         `json:"email,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Role        enums.ActorRole `json:"role"`
	IsActive    bool            `json:"is_active"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// UserList wraps the paginated users plus the next page cursor.
type UserList struct {
	Users      []UserView `json:"users"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewUserView maps the model into its API shape.
func NewUserView(user models.User) UserView {
	return UserView{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
