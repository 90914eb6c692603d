package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/internal/users"
	pkgauth "github.com/cellflip/cellflip-backend/pkg/auth"
	"github.com/cellflip/cellflip-backend/pkg/config"
	"github.com/cellflip/cellflip-backend/pkg/db"
	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/logger"
	"github.com/cellflip/cellflip-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller. Email/password
// covers sellers and admins; riders authenticate with a phone one-time code.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	RegisterSeller(ctx context.Context, input RegisterSellerInput) (*AuthResponse, error)
	RequestOTP(ctx context.Context, input RequestOTPInput) error
	VerifyOTP(ctx context.Context, input VerifyOTPInput) (*AuthResponse, error)
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type otpStore interface {
	OTPKey(phone string) string
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type service struct {
	users    userRepository
	otp      otpStore
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	otpCfg   config.OTPConfig
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	OTPStore       otpStore
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	OTPConfig      config.OTPConfig
	Logger         *logger.Logger
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.OTPStore == nil {
		return nil, fmt.Errorf("otp store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		users:  params.UserRepo,
		otp:    params.OTPStore,
		jwtCfg: params.JWTConfig,
		pwCfg:  params.PasswordConfig,
		otpCfg: params.OTPConfig,
		logg:   params.Logger,
		now:    time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.Role != enums.ActorRoleSeller && user.Role != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	return s.issueSession(ctx, user)
}

func (s *service) RegisterSeller(ctx context.Context, input RegisterSellerInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if strings.TrimSpace(input.Name) == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and email are required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        &email,
		PasswordHash: hash,
		Role:         enums.ActorRoleSeller,
		IsActive:     true,
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone != "" {
			user.Phone = &phone
		}
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email or phone already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller")
	}

	return s.issueSession(ctx, created)
}

// RequestOTP issues a login code for an active rider phone. The code is held
// in the cache under its TTL; re-requesting before expiry is rejected so a
// code cannot be silently rotated while the rider is typing it in.
func (s *service) RequestOTP(ctx context.Context, input RequestOTPInput) error {
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Same response as success so the endpoint cannot be used to
			// enumerate rider phone numbers.
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.Role != enums.ActorRoleRider || !user.IsActive {
		return nil
	}

	code, err := security.GenerateOTPCode(s.otpCfg.CodeLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}

	stored, err := s.otp.SetNX(ctx, s.otp.OTPKey(phone), code, s.otpCfg.TTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}
	if !stored {
		return pkgerrors.New(pkgerrors.CodeConflict, "a code was already sent; wait for it to expire")
	}

	// SMS delivery is handled by the notifications pipeline; the code is
	// only ever logged in development.
	s.logg.Info(s.logg.WithField(ctx, "phone", phone), "rider otp issued")
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, input VerifyOTPInput) (*AuthResponse, error) {
	phone := strings.TrimSpace(input.Phone)
	code := strings.TrimSpace(input.Code)
	if phone == "" || code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone and code are required")
	}

	key := s.otp.OTPKey(phone)
	expected, err := s.otp.Get(ctx, key)
	if err != nil || expected == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "code is invalid or expired")
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "code is invalid or expired")
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "code is invalid or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.Role != enums.ActorRoleRider || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	// Single use.
	if err := s.otp.Del(ctx, key); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "phone", phone), "delete otp", err)
	}

	return s.issueSession(ctx, user)
}

func (s *service) issueSession(ctx context.Context, user *models.User) (*AuthResponse, error) {
	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	if err := s.users.Update(ctx, user.ID, map[string]any{"last_login_at": now}); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "user_id", user.ID.String()), "record login", err)
	}
	loginAt := now
	user.LastLoginAt = &loginAt

	return &AuthResponse{
		AccessToken: token,
		ExpiresIn:   s.jwtCfg.ExpirationMinutes * 60,
		User:        users.NewUserView(*user),
	}, nil
}
