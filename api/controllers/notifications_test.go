package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/api/middleware"
	"github.com/cellflip/cellflip-backend/internal/notifications"
	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/logger"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

type testNotificationsService struct {
	pushFn     func(ctx context.Context, notification models.Notification) error
	listFn     func(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) (*notifications.NotificationList, error)
	markReadFn func(ctx context.Context, id, userID uuid.UUID) error
}

func (s *testNotificationsService) Push(ctx context.Context, notification models.Notification) error {
	if s.pushFn != nil {
		return s.pushFn(ctx, notification)
	}
	return nil
}

func (s *testNotificationsService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) (*notifications.NotificationList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID, params, unreadOnly)
	}
	return &notifications.NotificationList{}, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, id, userID)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func withActor(req *http.Request, userID uuid.UUID, role string) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, id, uid uuid.UUID) error {
			called = true
			if id != notificationID {
				t.Fatalf("unexpected notification %s", id)
			}
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", nil)
	req = withActor(req, userID, "seller")
	req = addRouteParam(req, "notificationId", notificationID.String())

	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["status"] != "read" {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestMarkNotificationReadInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/invalid/read", nil)
	req = withActor(req, uuid.New(), "seller")
	req = addRouteParam(req, "notificationId", "invalid")

	resp := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListMyNotificationsPassesUnreadFilter(t *testing.T) {
	userID := uuid.New()
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, uid uuid.UUID, params pagination.Params, unreadOnly bool) (*notifications.NotificationList, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			if !unreadOnly {
				t.Fatal("expected unread_only filter to pass through")
			}
			return &notifications.NotificationList{UnreadCount: 2}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?unread_only=true", nil)
	req = withActor(req, userID, "rider")

	resp := httptest.NewRecorder()
	ListMyNotifications(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data notifications.NotificationList `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.UnreadCount != 2 {
		t.Fatalf("expected unread count 2 got %d", envelope.Data.UnreadCount)
	}
}
