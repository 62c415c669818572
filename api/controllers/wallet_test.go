package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasfarrell/wavecrest-backend/api/middleware"
	"github.com/lucasfarrell/wavecrest-backend/internal/wallet"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	pkgerrors "github.com/lucasfarrell/wavecrest-backend/pkg/errors"
	"github.com/lucasfarrell/wavecrest-backend/pkg/pagination"
)

type testWalletService struct {
	previewFn func(ctx context.Context, input wallet.SplitInput) (*wallet.FeeSplitView, error)
	executeFn func(ctx context.Context, input wallet.SplitInput) (*wallet.ExecuteSplitResult, error)
	ledgerFn  func(ctx context.Context, guideID uuid.UUID, params pagination.Params) (*wallet.LedgerList, error)
}

func (s *testWalletService) PreviewSplit(ctx context.Context, input wallet.SplitInput) (*wallet.FeeSplitView, error) {
	if s.previewFn != nil {
		return s.previewFn(ctx, input)
	}
	return &wallet.FeeSplitView{}, nil
}

func (s *testWalletService) ExecuteSplit(ctx context.Context, input wallet.SplitInput) (*wallet.ExecuteSplitResult, error) {
	if s.executeFn != nil {
		return s.executeFn(ctx, input)
	}
	return &wallet.ExecuteSplitResult{}, nil
}

func (s *testWalletService) ListGuideLedger(ctx context.Context, guideID uuid.UUID, params pagination.Params) (*wallet.LedgerList, error) {
	if s.ledgerFn != nil {
		return s.ledgerFn(ctx, guideID, params)
	}
	return &wallet.LedgerList{}, nil
}

func branchAdminRequest(method, target string, userID, branchID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.ActorRoleBranchAdmin))
	ctx = middleware.WithBranchID(ctx, branchID.String())
	return req.WithContext(ctx)
}

func TestFeeSplitPreviewReturnsView(t *testing.T) {
	tripID := uuid.New()
	branchID := uuid.New()

	svc := &testWalletService{
		previewFn: func(ctx context.Context, input wallet.SplitInput) (*wallet.FeeSplitView, error) {
			if input.TripID != tripID {
				t.Fatalf("unexpected trip %s", input.TripID)
			}
			return &wallet.FeeSplitView{TotalFee: decimal.NewFromInt(1000000)}, nil
		},
	}

	req := branchAdminRequest(http.MethodGet, "/api/v1/trips/"+tripID.String()+"/fee-split", uuid.New(), branchID)
	req = addRouteParam(req, "tripId", tripID.String())

	resp := httptest.NewRecorder()
	FeeSplitPreview(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data wallet.FeeSplitView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data.TotalFee.Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("unexpected total %s", envelope.Data.TotalFee)
	}
}

func TestFeeSplitExecuteReturnsCreated(t *testing.T) {
	tripID := uuid.New()
	called := false
	svc := &testWalletService{
		executeFn: func(ctx context.Context, input wallet.SplitInput) (*wallet.ExecuteSplitResult, error) {
			called = true
			return &wallet.ExecuteSplitResult{}, nil
		},
	}

	req := branchAdminRequest(http.MethodPost, "/api/v1/trips/"+tripID.String()+"/fee-split", uuid.New(), uuid.New())
	req = addRouteParam(req, "tripId", tripID.String())

	resp := httptest.NewRecorder()
	FeeSplitExecute(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestFeeSplitExecuteMapsConflict(t *testing.T) {
	tripID := uuid.New()
	svc := &testWalletService{
		executeFn: func(ctx context.Context, input wallet.SplitInput) (*wallet.ExecuteSplitResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "fee split already executed for this trip")
		},
	}

	req := branchAdminRequest(http.MethodPost, "/api/v1/trips/"+tripID.String()+"/fee-split", uuid.New(), uuid.New())
	req = addRouteParam(req, "tripId", tripID.String())

	resp := httptest.NewRecorder()
	FeeSplitExecute(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestGuideLedgerForwardsPagination(t *testing.T) {
	guideID := uuid.New()

	var gotGuide uuid.UUID
	var gotParams pagination.Params
	svc := &testWalletService{
		ledgerFn: func(ctx context.Context, gid uuid.UUID, params pagination.Params) (*wallet.LedgerList, error) {
			gotGuide = gid
			gotParams = params
			return &wallet.LedgerList{}, nil
		},
	}

	req := guideRequest(http.MethodGet, "/api/v1/wallet/ledger?limit=10&cursor=abc", "", uuid.New(), guideID)
	resp := httptest.NewRecorder()
	GuideLedger(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotGuide != guideID {
		t.Fatalf("expected guide %s, got %s", guideID, gotGuide)
	}
	if gotParams.Limit != 10 || gotParams.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", gotParams)
	}
}

func TestGuideLedgerRequiresGuideContext(t *testing.T) {
	req := branchAdminRequest(http.MethodGet, "/api/v1/wallet/ledger", uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	GuideLedger(&testWalletService{}, testLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
