package tradein

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
	"github.com/cellflip/cellflip-backend/pkg/types"
)

func setupRequestTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS sell_requests (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  seller_name TEXT NOT NULL,
  seller_phone TEXT NOT NULL,
  device TEXT NOT NULL,
  pickup_address TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'created',
  base_price_cents INTEGER NOT NULL,
  verification TEXT,
  seller_decision TEXT NOT NULL DEFAULT 'pending',
  assigned_rider_id TEXT,
  rider_assigned_at DATETIME,
  pickup_scheduled_at DATETIME,
  evidence_image_keys TEXT,
  bank_details TEXT,
  bank_details_locked INTEGER NOT NULL DEFAULT 0,
  payout_status TEXT NOT NULL DEFAULT 'pending',
  payout_tx_ref TEXT,
  paid_at DATETIME,
  rider_payout_cents INTEGER,
  rider_payout_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS status_history (
  id TEXT PRIMARY KEY,
  sell_request_id TEXT NOT NULL,
  status TEXT NOT NULL,
  changed_by TEXT NOT NULL,
  note TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedSellRequest(t *testing.T, db *gorm.DB, sellerID uuid.UUID, createdAt time.Time) *models.SellRequest {
	t.Helper()
	req := &models.SellRequest{
		ID:          uuid.New(),
		SellerID:    sellerID,
		SellerName:  "Asha",
		SellerPhone: "+15550001111",
		Device: types.DeviceSpec{
			Brand:        "Samsung",
			Model:        "Galaxy S23",
			StorageGB:    256,
			Condition:    enums.DeviceConditionGood,
			PurchaseYear: 2023,
		},
		PickupAddress:  types.PickupAddress{Line1: "12 Hill Rd", City: "Pune"},
		Status:         enums.WorkflowStatusCreated,
		BasePriceCents: 12600,
		SellerDecision: enums.SellerDecisionPending,
		PayoutStatus:   enums.PayoutStatusPending,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func TestFindPreloadsHistoryInOrder(t *testing.T) {
	db := setupRequestTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	req := seedSellRequest(t, db, uuid.New(), time.Now().Add(-time.Hour))

	statuses := []enums.WorkflowStatus{
		enums.WorkflowStatusCreated,
		enums.WorkflowStatusAdminApproved,
		enums.WorkflowStatusAssignedToRider,
	}
	base := time.Now().Add(-30 * time.Minute)
	for i, status := range statuses {
		entry := &models.StatusHistory{
			ID:            uuid.New(),
			SellRequestID: req.ID,
			Status:        status,
			ChangedBy:     enums.ActorRoleAdmin,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.AppendHistory(ctx, entry))
	}

	found, err := repo.Find(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, found.History, 3)
	for i, status := range statuses {
		assert.Equal(t, status, found.History[i].Status)
	}
}

func TestSaveDoesNotTouchHistoryRows(t *testing.T) {
	db := setupRequestTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	req := seedSellRequest(t, db, uuid.New(), time.Now().Add(-time.Hour))
	require.NoError(t, repo.AppendHistory(ctx, &models.StatusHistory{
		ID:            uuid.New(),
		SellRequestID: req.ID,
		Status:        enums.WorkflowStatusCreated,
		ChangedBy:     enums.ActorRoleSeller,
		CreatedAt:     time.Now(),
	}))

	loaded, err := repo.Find(ctx, req.ID)
	require.NoError(t, err)
	loaded.Status = enums.WorkflowStatusAdminApproved
	require.NoError(t, repo.Save(ctx, loaded))

	var count int64
	require.NoError(t, db.Model(&models.StatusHistory{}).
		Where("sell_request_id = ?", req.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	found, err := repo.Find(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.WorkflowStatusAdminApproved, found.Status)
}

func TestListBySellerPaginatesWithCursor(t *testing.T) {
	db := setupRequestTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 5; i++ {
		seedSellRequest(t, db, sellerID, base.Add(time.Duration(i)*time.Hour))
	}
	seedSellRequest(t, db, uuid.New(), base)

	first, err := repo.ListBySeller(ctx, sellerID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Requests, 3)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListBySeller(ctx, sellerID, pagination.Params{Limit: 3, Cursor: first.NextCursor})
	require.NoError(t, err)
	assert.Len(t, second.Requests, 2)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, row := range append(first.Requests, second.Requests...) {
		assert.False(t, seen[row.ID], "request %s returned twice", row.ID)
		seen[row.ID] = true
	}
}

func TestListFiltersByStatusAndWindow(t *testing.T) {
	db := setupRequestTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-48 * time.Hour)
	early := seedSellRequest(t, db, uuid.New(), base)
	late := seedSellRequest(t, db, uuid.New(), base.Add(24*time.Hour))
	late.Status = enums.WorkflowStatusAdminApproved
	require.NoError(t, repo.Save(ctx, late))

	approved := enums.WorkflowStatusAdminApproved
	list, err := repo.List(ctx, pagination.Params{}, ListFilters{Status: &approved})
	require.NoError(t, err)
	require.Len(t, list.Requests, 1)
	assert.Equal(t, late.ID, list.Requests[0].ID)

	cutoff := base.Add(time.Hour)
	list, err = repo.List(ctx, pagination.Params{}, ListFilters{DateTo: &cutoff})
	require.NoError(t, err)
	require.Len(t, list.Requests, 1)
	assert.Equal(t, early.ID, list.Requests[0].ID)
}
