package port

import (
	"context"
	"time"

	"github.com/uniformhq/uniform-orders/internal/domain/entity"
)

// TransactionManager runs a function within a storage transaction. The
// transaction travels in the context; nested calls reuse it.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransitionMeta carries the metadata written alongside a status transition.
// Zero-valued fields are left untouched in storage.
type TransitionMeta struct {
	PRNumber   string
	PRDate     *time.Time
	PONumber   string
	ApprovedBy string
	ApprovedAt *time.Time
}

// ListOrdersFilter narrows List results. Zero values mean "any".
type ListOrdersFilter struct {
	EmployeeID string
	Status     string
	Limit      int
	Offset     int
}

// OrderRepository defines persistence operations for Order and OrderSplit.
// GetByID and FindSplit return nil without error when the id is unknown.
type OrderRepository interface {
	// Create inserts the order, its items and any splits. Callers wrap it in
	// a transaction together with entitlement consumption.
	Create(ctx context.Context, order *entity.Order) error

	GetByID(ctx context.Context, id string) (*entity.Order, error)
	FindSplit(ctx context.Context, id string) (*entity.OrderSplit, error)
	List(ctx context.Context, filter ListOrdersFilter) ([]*entity.Order, error)

	// TransitionOrder conditionally moves an order from one status to
	// another, writing the given metadata. Returns false when the order was
	// not in the expected status (lost race or repeated attempt); the row is
	// left untouched in that case.
	TransitionOrder(ctx context.Context, id, fromStatus, toStatus string, meta TransitionMeta) (bool, error)

	// TransitionSplit is TransitionOrder for a split child.
	TransitionSplit(ctx context.Context, id, fromStatus, toStatus string, meta TransitionMeta) (bool, error)
}

// EntitlementRepository reads the per-employee allowance budget maintained
// by the entitlement-rules collaborator. Returns nil without error when the
// employee has no entitlement record.
type EntitlementRepository interface {
	GetEntitlement(ctx context.Context, employeeID string) (*entity.EmployeeEntitlement, error)
}

// ConsumptionRepository reads and increments consumed entitlement.
type ConsumptionRepository interface {
	// GetConsumed returns nil without error when nothing has been consumed.
	GetConsumed(ctx context.Context, employeeID string) (*entity.ConsumedEntitlement, error)

	// Increment atomically adds qty to the employee's consumption for the
	// category, creating the row if absent.
	Increment(ctx context.Context, employeeID, category string, qty int) error
}

// CatalogRepository resolves products to category, price and vendor.
type CatalogRepository interface {
	// GetProduct returns nil without error when the product is unknown.
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
}

// CompanyRepository reads company policy flags.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

// EmployeeRepository resolves employees to their company.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
}
