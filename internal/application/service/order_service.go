package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformhq/uniform-orders/internal/application/port"
	"github.com/uniformhq/uniform-orders/internal/domain/category"
	"github.com/uniformhq/uniform-orders/internal/domain/entitlement"
	"github.com/uniformhq/uniform-orders/internal/domain/entity"
	"github.com/uniformhq/uniform-orders/pkg/apperrors"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CartLine is one submitted cart line before catalog resolution.
type CartLine struct {
	ProductID string
	Size      string
	Quantity  int
}

// PlaceOrderInput carries a cart submission.
type PlaceOrderInput struct {
	EmployeeID         string
	DeliveryAddress    string
	DispatchPreference string
	Lines              []CartLine
}

// UnresolvedLine records a cart line dropped because its product could not
// be resolved to a vendor. Dropped lines are reported, never silently lost.
type UnresolvedLine struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// ComposeResult is the outcome of placing an order.
type ComposeResult struct {
	Order      *entity.Order    `json:"order"`
	Unresolved []UnresolvedLine `json:"unresolved,omitempty"`
}

// OrderService composes carts into orders: splits items by vendor, detects
// entitlement overage and allocates personal-payment charges, then persists
// the order together with the consumption increment.
type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*ComposeResult, error)
	GetOrder(ctx context.Context, id string) (*entity.Order, error)
	ListOrders(ctx context.Context, filter port.ListOrdersFilter) ([]*entity.Order, error)
	Balance(ctx context.Context, employeeID string) (map[string]int, error)
}

type orderServiceImpl struct {
	orderRepo    port.OrderRepository
	catalogRepo  port.CatalogRepository
	companyRepo  port.CompanyRepository
	employeeRepo port.EmployeeRepository
	entRepo      port.EntitlementRepository
	consRepo     port.ConsumptionRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo port.OrderRepository,
	catalogRepo port.CatalogRepository,
	companyRepo port.CompanyRepository,
	employeeRepo port.EmployeeRepository,
	entRepo port.EntitlementRepository,
	consRepo port.ConsumptionRepository,
	txManager port.TransactionManager,
	logger Logger,
) OrderService {
	return &orderServiceImpl{
		orderRepo:    orderRepo,
		catalogRepo:  catalogRepo,
		companyRepo:  companyRepo,
		employeeRepo: employeeRepo,
		entRepo:      entRepo,
		consRepo:     consRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// PlaceOrder composes and persists an order from a cart submission.
func (s *orderServiceImpl) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*ComposeResult, error) {
	employee, err := s.employeeRepo.GetByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("load employee: %w", err)
	}
	if employee == nil {
		return nil, apperrors.NotFound("employee %s not found", input.EmployeeID)
	}

	company, err := s.companyRepo.GetByID(ctx, employee.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return nil, apperrors.NotFound("company %s not found", employee.CompanyID)
	}

	items, unresolved, err := s.resolveCart(ctx, input.Lines)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		if len(unresolved) > 0 {
			return nil, apperrors.Dependency(nil, "no cart item could be resolved to a product")
		}
		return nil, apperrors.Validation("cart is empty")
	}

	// The remaining-allowance read, the overage computation, the consumption
	// increment and the order insert share one write transaction so two
	// concurrent submissions by the same employee cannot both see the same
	// consumption snapshot and both skip the overage charge.
	order := s.composeOrder(input, employee, company, items)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		ent, err := s.entRepo.GetEntitlement(txCtx, input.EmployeeID)
		if err != nil {
			return fmt.Errorf("load entitlement: %w", err)
		}
		consumed, err := s.consRepo.GetConsumed(txCtx, input.EmployeeID)
		if err != nil {
			return fmt.Errorf("load consumption: %w", err)
		}
		order.PersonalPaymentAmount, order.IsPersonalPayment = allocateOverage(items, ent, consumed, company.AllowPersonalPayments)

		for _, item := range items {
			if err := s.consRepo.Increment(txCtx, input.EmployeeID, category.Normalize(item.Category), item.Quantity); err != nil {
				return fmt.Errorf("increment consumption: %w", err)
			}
		}
		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to place order", "error", err, "employee_id", input.EmployeeID)
		return nil, err
	}

	s.logger.Info("Order placed",
		"order_id", order.ID,
		"employee_id", input.EmployeeID,
		"splits", len(order.Splits),
		"personal_payment", order.PersonalPaymentAmount.StringFixed(2),
	)
	return &ComposeResult{Order: order, Unresolved: unresolved}, nil
}

// resolveCart looks up every cart line in the catalog. Zero-quantity lines
// are ignored; negative quantities and unknown sizes are validation errors;
// unknown products are dropped and reported.
func (s *orderServiceImpl) resolveCart(ctx context.Context, lines []CartLine) ([]entity.CartItem, []UnresolvedLine, error) {
	var items []entity.CartItem
	var unresolved []UnresolvedLine

	for _, line := range lines {
		if line.Quantity == 0 {
			continue
		}
		if line.Quantity < 0 {
			return nil, nil, apperrors.Validation("quantity must be positive for product %s", line.ProductID)
		}

		product, err := s.catalogRepo.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, nil, apperrors.Dependency(err, "product catalog unavailable")
		}
		if product == nil {
			unresolved = append(unresolved, UnresolvedLine{ProductID: line.ProductID, Reason: "product not found"})
			continue
		}
		if product.VendorID == "" {
			unresolved = append(unresolved, UnresolvedLine{ProductID: line.ProductID, Reason: "no vendor assigned"})
			continue
		}
		if !sizeAllowed(product.Sizes, line.Size) {
			return nil, nil, apperrors.Validation("unknown size %q for product %s", line.Size, line.ProductID)
		}

		items = append(items, entity.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Category:  category.Normalize(product.Category),
			Size:      line.Size,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			VendorID:  product.VendorID,
		})
	}
	return items, unresolved, nil
}

func sizeAllowed(sizes, size string) bool {
	if strings.TrimSpace(sizes) == "" {
		return true
	}
	for _, s := range strings.Split(sizes, ",") {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(size)) {
			return true
		}
	}
	return false
}

// composeOrder groups resolved items by vendor. A single vendor yields a
// standalone order; two or more yield a parent with one split per vendor,
// vendors kept in cart order.
func (s *orderServiceImpl) composeOrder(input PlaceOrderInput, employee *entity.Employee, company *entity.Company, items []entity.CartItem) *entity.Order {
	now := time.Now().UTC()

	// The PR gate only exists when the company routes orders through
	// site-admin PR approval; otherwise fulfilment proceeds on creation.
	initial := entity.StatusAwaitingFulfilment
	if company.EnablePRPOWorkflow && company.EnableSiteAdminPRApproval {
		initial = entity.StatusAwaitingApproval
	}

	order := &entity.Order{
		ID:                    uuid.NewString(),
		EmployeeID:            employee.ID,
		CompanyID:             company.ID,
		DeliveryAddress:       input.DeliveryAddress,
		DispatchPreference:    input.DispatchPreference,
		Status:                initial,
		PersonalPaymentAmount: decimal.Zero,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	var vendorOrder []string
	byVendor := make(map[string][]entity.OrderItem)
	for _, item := range items {
		oi := entity.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Category:  item.Category,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			VendorID:  item.VendorID,
		}
		order.Items = append(order.Items, oi)
		order.ItemCount += item.Quantity
		order.Total = order.Total.Add(item.LineTotal())

		if _, seen := byVendor[item.VendorID]; !seen {
			vendorOrder = append(vendorOrder, item.VendorID)
		}
		byVendor[item.VendorID] = append(byVendor[item.VendorID], oi)
	}

	if len(vendorOrder) < 2 {
		return order
	}

	order.IsSplit = true
	for _, vendorID := range vendorOrder {
		split := &entity.OrderSplit{
			ID:        uuid.NewString(),
			ParentID:  order.ID,
			VendorID:  vendorID,
			Items:     byVendor[vendorID],
			Status:    order.Status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		for _, oi := range split.Items {
			split.ItemCount += oi.Quantity
			split.Total = split.Total.Add(oi.LineTotal())
		}
		order.Splits = append(order.Splits, split)
	}
	return order
}

// allocateOverage aggregates ordered quantity per category (aliases and
// pluralization drift merged),
// compares against remaining entitlement and charges the exceeding quantity
// across the matching items in cart order. Money stays unrounded here;
// rounding happens only at output boundaries.
func allocateOverage(items []entity.CartItem, ent *entity.EmployeeEntitlement, consumed *entity.ConsumedEntitlement, allowPersonal bool) (decimal.Decimal, bool) {
	type bucket struct {
		category string
		total    int
	}
	var buckets []*bucket
	for _, item := range items {
		var b *bucket
		for _, existing := range buckets {
			if category.MatchesLenient(existing.category, item.Category) {
				b = existing
				break
			}
		}
		if b == nil {
			b = &bucket{category: item.Category}
			buckets = append(buckets, b)
		}
		b.total += item.Quantity
	}

	amount := decimal.Zero
	charged := false
	for _, b := range buckets {
		if b.total == 0 {
			continue
		}
		remaining := entitlement.Remaining(ent, consumed, b.category)
		exceeded := b.total - remaining
		if exceeded <= 0 || !allowPersonal {
			continue
		}

		left := exceeded
		for _, item := range items {
			if left == 0 {
				break
			}
			if !category.MatchesLenient(item.Category, b.category) {
				continue
			}
			qty := item.Quantity
			if qty > left {
				qty = left
			}
			amount = amount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))))
			left -= qty
		}
		charged = true
	}
	return amount, charged
}

// GetOrder retrieves an order by ID
func (s *orderServiceImpl) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.NotFound("order %s not found", id)
	}
	return order, nil
}

// ListOrders lists orders matching the filter
func (s *orderServiceImpl) ListOrders(ctx context.Context, filter port.ListOrdersFilter) ([]*entity.Order, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Balance returns the remaining allowance per entitled category.
func (s *orderServiceImpl) Balance(ctx context.Context, employeeID string) (map[string]int, error) {
	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load employee: %w", err)
	}
	if employee == nil {
		return nil, apperrors.NotFound("employee %s not found", employeeID)
	}

	ent, err := s.entRepo.GetEntitlement(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load entitlement: %w", err)
	}
	consumed, err := s.consRepo.GetConsumed(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load consumption: %w", err)
	}

	balance := make(map[string]int)
	if ent == nil {
		return balance, nil
	}
	keys := make([]string, 0)
	for k := range ent.Merged() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		balance[k] = entitlement.Remaining(ent, consumed, k)
	}
	return balance, nil
}
