package service

import (
	"context"
	"sync"

	"github.com/uniformhq/uniform-orders/internal/application/port"
	"github.com/uniformhq/uniform-orders/internal/domain/entity"
)

// Mock repositories

type mockOrderRepo struct {
	createFunc          func(ctx context.Context, order *entity.Order) error
	getByIDFunc         func(ctx context.Context, id string) (*entity.Order, error)
	findSplitFunc       func(ctx context.Context, id string) (*entity.OrderSplit, error)
	listFunc            func(ctx context.Context, filter port.ListOrdersFilter) ([]*entity.Order, error)
	transitionOrderFunc func(ctx context.Context, id, fromStatus, toStatus string, meta port.TransitionMeta) (bool, error)
	transitionSplitFunc func(ctx context.Context, id, fromStatus, toStatus string, meta port.TransitionMeta) (bool, error)
}

func (m *mockOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, order)
	}
	return nil
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockOrderRepo) FindSplit(ctx context.Context, id string) (*entity.OrderSplit, error) {
	if m.findSplitFunc != nil {
		return m.findSplitFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockOrderRepo) List(ctx context.Context, filter port.ListOrdersFilter) ([]*entity.Order, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []*entity.Order{}, nil
}

func (m *mockOrderRepo) TransitionOrder(ctx context.Context, id, fromStatus, toStatus string, meta port.TransitionMeta) (bool, error) {
	if m.transitionOrderFunc != nil {
		return m.transitionOrderFunc(ctx, id, fromStatus, toStatus, meta)
	}
	return true, nil
}

func (m *mockOrderRepo) TransitionSplit(ctx context.Context, id, fromStatus, toStatus string, meta port.TransitionMeta) (bool, error) {
	if m.transitionSplitFunc != nil {
		return m.transitionSplitFunc(ctx, id, fromStatus, toStatus, meta)
	}
	return true, nil
}

type mockCatalogRepo struct {
	getProductFunc func(ctx context.Context, id string) (*entity.Product, error)
}

func (m *mockCatalogRepo) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	if m.getProductFunc != nil {
		return m.getProductFunc(ctx, id)
	}
	return nil, nil
}

type mockCompanyRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Company, error)
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Company{ID: id, AllowPersonalPayments: true, EnablePRPOWorkflow: true, EnableSiteAdminPRApproval: true}, nil
}

type mockEmployeeRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Employee, error)
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Employee{ID: id, CompanyID: "company-1"}, nil
}

type mockEntitlementRepo struct {
	getEntitlementFunc func(ctx context.Context, employeeID string) (*entity.EmployeeEntitlement, error)
}

func (m *mockEntitlementRepo) GetEntitlement(ctx context.Context, employeeID string) (*entity.EmployeeEntitlement, error) {
	if m.getEntitlementFunc != nil {
		return m.getEntitlementFunc(ctx, employeeID)
	}
	return nil, nil
}

type mockConsumptionRepo struct {
	getConsumedFunc func(ctx context.Context, employeeID string) (*entity.ConsumedEntitlement, error)
	incrementFunc   func(ctx context.Context, employeeID, category string, qty int) error
}

func (m *mockConsumptionRepo) GetConsumed(ctx context.Context, employeeID string) (*entity.ConsumedEntitlement, error) {
	if m.getConsumedFunc != nil {
		return m.getConsumedFunc(ctx, employeeID)
	}
	return nil, nil
}

func (m *mockConsumptionRepo) Increment(ctx context.Context, employeeID, category string, qty int) error {
	if m.incrementFunc != nil {
		return m.incrementFunc(ctx, employeeID, category, qty)
	}
	return nil
}

// mockTxManager runs the function directly, no real transaction.
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// serialTxManager serializes transactions with a mutex, mirroring the
// single-writer semantics of an immediate SQLite write transaction.
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// mockLogger discards everything.
type mockLogger struct{}

func (mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Error(msg string, keysAndValues ...interface{}) {}
