package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/internal/tradein"
	"github.com/cellflip/cellflip-backend/pkg/enums"
)

// testTradeinService embeds the interface so each test only fills in the
// methods it exercises.
type testTradeinService struct {
	tradein.Service
	verifyFn func(ctx context.Context, input tradein.VerifyInput) (*tradein.SellRequestView, error)
}

func (s *testTradeinService) Verify(ctx context.Context, input tradein.VerifyInput) (*tradein.SellRequestView, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, input)
	}
	return &tradein.SellRequestView{}, nil
}

func TestRiderVerifyMapsCheckSheet(t *testing.T) {
	riderID := uuid.New()
	requestID := uuid.New()
	var got tradein.VerifyInput
	svc := &testTradeinService{
		verifyFn: func(ctx context.Context, input tradein.VerifyInput) (*tradein.SellRequestView, error) {
			got = input
			return &tradein.SellRequestView{ID: requestID}, nil
		},
	}

	body := `{"checks":{"screen_crack":true,"battery_health":false}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rider/requests/"+requestID.String()+"/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, riderID, "rider")
	req = addRouteParam(req, "requestId", requestID.String())

	resp := httptest.NewRecorder()
	RiderVerify(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.RequestID != requestID || got.RiderID != riderID {
		t.Fatalf("unexpected identity pair %s/%s", got.RequestID, got.RiderID)
	}
	if passed, ok := got.Checks[enums.DefectCheckScreenCrack]; !ok || !passed {
		t.Fatal("expected screen_crack=true in mapped sheet")
	}
	if passed, ok := got.Checks[enums.DefectCheckBatteryHealth]; !ok || passed {
		t.Fatal("expected battery_health=false in mapped sheet")
	}
}

func TestRiderVerifyRejectsUnknownCheck(t *testing.T) {
	requestID := uuid.New()
	body := `{"checks":{"clairvoyance":true}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rider/requests/"+requestID.String()+"/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), "rider")
	req = addRouteParam(req, "requestId", requestID.String())

	resp := httptest.NewRecorder()
	RiderVerify(&testTradeinService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
