package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/config"
	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
	"github.com/cellflip/cellflip-backend/pkg/security"
)

type stubRepo struct {
	users   map[uuid.UUID]*models.User
	created *models.User
	updates map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[uuid.UUID]*models.User{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	out := *user
	out.ID = uuid.New()
	s.created = &out
	s.users[out.ID] = &out
	return &out, nil
}

func (s *stubRepo) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListByRole(ctx context.Context, role enums.ActorRole, params pagination.Params) (*UserList, error) {
	return &UserList{}, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	if !pkgerrors.HasCode(err, want) {
		t.Fatalf("expected code %s got %v", want, err)
	}
}

func strptr(v string) *string {
	return &v
}

func TestCreateRiderNeedsPhoneOnly(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	view, err := svc.Create(context.Background(), CreateInput{
		Name:  "Dele Rider",
		Phone: strptr("+2348012345678"),
		Role:  enums.ActorRoleRider,
	})
	if err != nil {
		t.Fatalf("create rider: %v", err)
	}
	if view.Role != enums.ActorRoleRider || !view.IsActive {
		t.Fatalf("unexpected view %+v", view)
	}
	if repo.created.PasswordHash != "" {
		t.Fatal("riders must not carry a password hash")
	}

	_, err = svc.Create(context.Background(), CreateInput{
		Name: "No Phone",
		Role: enums.ActorRoleRider,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateAdminHashesPassword(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Name:     "Ops Admin",
		Email:    strptr("Ops@CellFlip.IO"),
		Password: "super-secret",
		Role:     enums.ActorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if repo.created.Email == nil || *repo.created.Email != "ops@cellflip.io" {
		t.Fatalf("expected lowercased email, got %v", repo.created.Email)
	}
	ok, err := security.VerifyPassword("super-secret", repo.created.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestCreateRejectsShortPasswordAndSystemRole(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		Name:     "Weak",
		Email:    strptr("weak@cellflip.io"),
		Password: "short",
		Role:     enums.ActorRoleSeller,
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), CreateInput{
		Name: "Ghost",
		Role: enums.ActorRoleSystem,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestFindRiderRejectsNonRidersAndInactive(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	seller := &models.User{ID: uuid.New(), Name: "Seller", Role: enums.ActorRoleSeller, IsActive: true}
	repo.users[seller.ID] = seller
	_, err := svc.FindRider(context.Background(), seller.ID)
	assertCode(t, err, pkgerrors.CodeValidation)

	inactive := &models.User{ID: uuid.New(), Name: "Benched", Role: enums.ActorRoleRider, IsActive: false}
	repo.users[inactive.ID] = inactive
	_, err = svc.FindRider(context.Background(), inactive.ID)
	assertCode(t, err, pkgerrors.CodeValidation)

	active := &models.User{ID: uuid.New(), Name: "On Duty", Role: enums.ActorRoleRider, IsActive: true}
	repo.users[active.ID] = active
	found, err := svc.FindRider(context.Background(), active.ID)
	if err != nil {
		t.Fatalf("find rider: %v", err)
	}
	if found.ID != active.ID {
		t.Fatalf("unexpected rider %s", found.ID)
	}

	_, err = svc.FindRider(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestSetActiveUpdatesFlag(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	user := &models.User{ID: uuid.New(), Name: "Toggle", Role: enums.ActorRoleRider, IsActive: true}
	repo.users[user.ID] = user

	if err := svc.SetActive(context.Background(), user.ID, false); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if active, ok := repo.updates["is_active"].(bool); !ok || active {
		t.Fatalf("expected is_active=false update, got %v", repo.updates)
	}
}
