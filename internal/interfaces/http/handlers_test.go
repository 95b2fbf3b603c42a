package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformhq/uniform-orders/internal/application/port"
	"github.com/uniformhq/uniform-orders/internal/application/service"
	"github.com/uniformhq/uniform-orders/internal/domain/entity"
	"github.com/uniformhq/uniform-orders/internal/domain/workflow"
	"github.com/uniformhq/uniform-orders/pkg/apperrors"
)

type fakeOrderService struct {
	placeOrderFunc func(ctx context.Context, input service.PlaceOrderInput) (*service.ComposeResult, error)
	getOrderFunc   func(ctx context.Context, id string) (*entity.Order, error)
	listOrdersFunc func(ctx context.Context, filter port.ListOrdersFilter) ([]*entity.Order, error)
	balanceFunc    func(ctx context.Context, employeeID string) (map[string]int, error)
}

func (f *fakeOrderService) PlaceOrder(ctx context.Context, input service.PlaceOrderInput) (*service.ComposeResult, error) {
	return f.placeOrderFunc(ctx, input)
}

func (f *fakeOrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return f.getOrderFunc(ctx, id)
}

func (f *fakeOrderService) ListOrders(ctx context.Context, filter port.ListOrdersFilter) ([]*entity.Order, error) {
	return f.listOrdersFunc(ctx, filter)
}

func (f *fakeOrderService) Balance(ctx context.Context, employeeID string) (map[string]int, error) {
	return f.balanceFunc(ctx, employeeID)
}

type fakeApprovalService struct {
	approveFunc func(ctx context.Context, orderID, approverEmail, prNumber string, prDate *time.Time) (*entity.Order, error)
}

func (f *fakeApprovalService) Approve(ctx context.Context, orderID, approverEmail, prNumber string, prDate *time.Time) (*entity.Order, error) {
	return f.approveFunc(ctx, orderID, approverEmail, prNumber, prDate)
}

func (f *fakeApprovalService) BulkApprove(ctx context.Context, approverEmail string, entries []service.BulkEntry) (*service.BulkResult, error) {
	return &service.BulkResult{}, nil
}

func (f *fakeApprovalService) LinkPO(ctx context.Context, approverEmail, poNumber string, orderIDs []string) error {
	return nil
}

func (f *fakeApprovalService) AdvanceFulfilment(ctx context.Context, orderID string, trigger workflow.Trigger) (*entity.Order, error) {
	return nil, apperrors.NotFound("order %s not found", orderID)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func testServer(orders *fakeOrderService, approvals *fakeApprovalService) *Server {
	return NewServer(DefaultServerConfig(), orders, approvals, nopLogger{})
}

func sampleOrder() *entity.Order {
	return &entity.Order{
		ID:                    "O1",
		EmployeeID:            "emp-1",
		CompanyID:             "company-1",
		Status:                entity.StatusAwaitingApproval,
		Total:                 decimal.RequireFromString("1400"),
		PersonalPaymentAmount: decimal.Zero,
		ItemCount:             3,
		CreatedAt:             time.Now().UTC(),
		UpdatedAt:             time.Now().UTC(),
	}
}

func TestHealthCheck(t *testing.T) {
	srv := testServer(&fakeOrderService{}, &fakeApprovalService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestPlaceOrderEndpoint(t *testing.T) {
	orders := &fakeOrderService{
		placeOrderFunc: func(ctx context.Context, input service.PlaceOrderInput) (*service.ComposeResult, error) {
			assert.Equal(t, "emp-1", input.EmployeeID)
			assert.Len(t, input.Lines, 1)
			return &service.ComposeResult{Order: sampleOrder()}, nil
		},
	}
	srv := testServer(orders, &fakeApprovalService{})

	body := `{"employee_id":"emp-1","items":[{"product_id":"p-shirt","size":"M","quantity":2}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    PlaceOrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "O1", resp.Data.Order.ID)
	assert.Equal(t, "1400.00", resp.Data.Order.Total)
}

func TestPlaceOrderEndpoint_MissingEmployeeID(t *testing.T) {
	srv := testServer(&fakeOrderService{}, &fakeApprovalService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorKindMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation maps to 400", apperrors.Validation("bad input"), http.StatusBadRequest},
		{"not found maps to 404", apperrors.NotFound("missing"), http.StatusNotFound},
		{"conflict maps to 409", apperrors.Conflict("wrong state"), http.StatusConflict},
		{"dependency maps to 502", apperrors.Dependency(nil, "catalog down"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &fakeOrderService{
				getOrderFunc: func(ctx context.Context, id string) (*entity.Order, error) {
					return nil, tt.err
				},
			}
			srv := testServer(orders, &fakeApprovalService{})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/orders/O1", nil)
			srv.Router().ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestApproveEndpoint(t *testing.T) {
	approvals := &fakeApprovalService{
		approveFunc: func(ctx context.Context, orderID, approverEmail, prNumber string, prDate *time.Time) (*entity.Order, error) {
			assert.Equal(t, "O1", orderID)
			assert.Equal(t, "PR-1", prNumber)
			require.NotNil(t, prDate)
			assert.Equal(t, "2026-08-01", prDate.Format("2006-01-02"))

			o := sampleOrder()
			o.Status = entity.StatusAwaitingFulfilment
			o.PRNumber = prNumber
			return o, nil
		},
	}
	srv := testServer(&fakeOrderService{}, approvals)

	body := `{"approver_email":"admin@site.example","pr_number":"PR-1","pr_date":"2026-08-01"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/O1/approve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool          `json:"success"`
		Data    OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.StatusAwaitingFulfilment, resp.Data.Status)
	assert.Equal(t, "PR-1", resp.Data.PRNumber)
}

func TestApproveEndpoint_MalformedDate(t *testing.T) {
	srv := testServer(&fakeOrderService{}, &fakeApprovalService{})

	body := `{"approver_email":"admin@site.example","pr_number":"PR-1","pr_date":"01/08/2026"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/O1/approve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFulfilmentEndpoint_UnknownTrigger(t *testing.T) {
	srv := testServer(&fakeOrderService{}, &fakeApprovalService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/O1/fulfilment", strings.NewReader(`{"trigger":"TELEPORT"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBalanceEndpoint(t *testing.T) {
	orders := &fakeOrderService{
		balanceFunc: func(ctx context.Context, employeeID string) (map[string]int, error) {
			assert.Equal(t, "emp-1", employeeID)
			return map[string]int{"shirt": 2, "pant": 1}, nil
		},
	}
	srv := testServer(orders, &fakeApprovalService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/employees/emp-1/balance", nil)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data["shirt"])
}
