package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/cellflip/cellflip-backend/pkg/auth"
	"github.com/cellflip/cellflip-backend/pkg/config"
	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/logger"
	"github.com/cellflip/cellflip-backend/pkg/security"
)

func TestLoginMintsTokenForSeller(t *testing.T) {
	password := "seller-secret"
	user := sellerUser(t, "seller@example.com", password)
	cfg := jwtConfig()

	svc := buildTestService(t, user, cfg)

	resp, err := svc.Login(context.Background(), LoginInput{
		Email:    "seller@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %s in claims, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.ActorRoleSeller {
		t.Fatalf("expected seller role claim, got %s", claims.Role)
	}
	if resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	user := sellerUser(t, "seller@example.com", "right-password")
	svc := buildTestService(t, user, jwtConfig())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "seller@example.com",
		Password: "wrong-password",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRejectsRiderRole(t *testing.T) {
	phone := "+15550001111"
	user := &models.User{
		ID:       uuid.New(),
		Name:     "Rider",
		Phone:    &phone,
		Role:     enums.ActorRoleRider,
		IsActive: true,
	}
	email := "rider@example.com"
	user.Email = &email

	svc := buildTestService(t, user, jwtConfig())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    email,
		Password: "anything",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	password := "seller-secret"
	user := sellerUser(t, "seller@example.com", password)
	user.IsActive = false

	svc := buildTestService(t, user, jwtConfig())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "seller@example.com",
		Password: password,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRegisterSellerIssuesSession(t *testing.T) {
	svc := buildTestService(t, nil, jwtConfig())

	resp, err := svc.RegisterSeller(context.Background(), RegisterSellerInput{
		Name:     "New Seller",
		Email:    "New.Seller@Example.com",
		Password: "long-enough-password",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Role != enums.ActorRoleSeller {
		t.Fatalf("expected seller role, got %s", resp.User.Role)
	}
	if resp.User.Email == nil || *resp.User.Email != "new.seller@example.com" {
		t.Fatalf("expected lowercased email, got %v", resp.User.Email)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected access token")
	}
}

func TestRegisterSellerRejectsShortPassword(t *testing.T) {
	svc := buildTestService(t, nil, jwtConfig())

	_, err := svc.RegisterSeller(context.Background(), RegisterSellerInput{
		Name:     "New Seller",
		Email:    "seller@example.com",
		Password: "short",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestOTPRoundTripLogsRiderIn(t *testing.T) {
	phone := "+15550001111"
	rider := &models.User{
		ID:       uuid.New(),
		Name:     "Rider",
		Phone:    &phone,
		Role:     enums.ActorRoleRider,
		IsActive: true,
	}
	cfg := jwtConfig()
	repo := &stubUserRepo{user: rider}
	store := newStubOTPStore()
	svc := newTestService(t, repo, store, cfg)

	if err := svc.RequestOTP(context.Background(), RequestOTPInput{Phone: phone}); err != nil {
		t.Fatalf("request otp: %v", err)
	}

	code := store.values[store.OTPKey(phone)]
	if code == "" {
		t.Fatalf("expected a code to be stored")
	}

	resp, err := svc.VerifyOTP(context.Background(), VerifyOTPInput{Phone: phone, Code: code})
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.ActorRoleRider {
		t.Fatalf("expected rider role claim, got %s", claims.Role)
	}
	if _, ok := store.values[store.OTPKey(phone)]; ok {
		t.Fatalf("expected code to be consumed")
	}
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	phone := "+15550001111"
	rider := &models.User{
		ID:       uuid.New(),
		Name:     "Rider",
		Phone:    &phone,
		Role:     enums.ActorRoleRider,
		IsActive: true,
	}
	repo := &stubUserRepo{user: rider}
	store := newStubOTPStore()
	svc := newTestService(t, repo, store, jwtConfig())

	if err := svc.RequestOTP(context.Background(), RequestOTPInput{Phone: phone}); err != nil {
		t.Fatalf("request otp: %v", err)
	}

	_, err := svc.VerifyOTP(context.Background(), VerifyOTPInput{Phone: phone, Code: "000000"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	if _, ok := store.values[store.OTPKey(phone)]; !ok {
		t.Fatalf("expected code to survive a failed attempt")
	}
}

func TestRequestOTPDoesNotRevealUnknownPhones(t *testing.T) {
	repo := &stubUserRepo{}
	store := newStubOTPStore()
	svc := newTestService(t, repo, store, jwtConfig())

	if err := svc.RequestOTP(context.Background(), RequestOTPInput{Phone: "+15559999999"}); err != nil {
		t.Fatalf("expected silent success for unknown phone, got %v", err)
	}
	if len(store.values) != 0 {
		t.Fatalf("expected no code stored for unknown phone")
	}
}

func TestRequestOTPRejectsResendBeforeExpiry(t *testing.T) {
	phone := "+15550001111"
	rider := &models.User{
		ID:       uuid.New(),
		Name:     "Rider",
		Phone:    &phone,
		Role:     enums.ActorRoleRider,
		IsActive: true,
	}
	repo := &stubUserRepo{user: rider}
	store := newStubOTPStore()
	svc := newTestService(t, repo, store, jwtConfig())

	if err := svc.RequestOTP(context.Background(), RequestOTPInput{Phone: phone}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	err := svc.RequestOTP(context.Background(), RequestOTPInput{Phone: phone})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func sellerUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Name:         "Seller",
		Email:        &email,
		PasswordHash: hash,
		Role:         enums.ActorRoleSeller,
		IsActive:     true,
	}
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cellflip",
		ExpirationMinutes: 30,
	}
}

func buildTestService(t *testing.T, user *models.User, cfg config.JWTConfig) Service {
	t.Helper()
	repo := &stubUserRepo{user: user}
	return newTestService(t, repo, newStubOTPStore(), cfg)
}

func newTestService(t *testing.T, repo *stubUserRepo, store *stubOTPStore, cfg config.JWTConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		OTPStore:       store,
		JWTConfig:      cfg,
		PasswordConfig: config.PasswordConfig{},
		OTPConfig:      config.OTPConfig{TTL: 5 * time.Minute, CodeLength: 6},
		Logger:         logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != want {
		t.Fatalf("expected %s error, got %v", want, err)
	}
}

type stubUserRepo struct {
	user    *models.User
	created *models.User
	updates map[string]any
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	s.created = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email != nil && *s.user.Email == email {
		copied := *s.user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	if s.user != nil && s.user.Phone != nil && *s.user.Phone == phone {
		copied := *s.user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) Update(_ context.Context, _ uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

type stubOTPStore struct {
	values map[string]string
}

func newStubOTPStore() *stubOTPStore {
	return &stubOTPStore{values: map[string]string{}}
}

func (s *stubOTPStore) OTPKey(phone string) string {
	return "otp:" + phone
}

func (s *stubOTPStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *stubOTPStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", nil
	}
	return value, nil
}

func (s *stubOTPStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}
