package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uniformhq/uniform-orders/internal/application/port"
	"github.com/uniformhq/uniform-orders/internal/domain/entity"
	"github.com/uniformhq/uniform-orders/internal/infrastructure/persistence/sqlite"
)

// OrderRepository implements port.OrderRepository. Items are stored once on
// the parent order; split items are reconstructed by vendor on load, which
// keeps the union-of-splits invariant true by construction.
type OrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) port.OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the order, its items and any splits.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	query := `
		INSERT INTO orders (
			id, employee_id, company_id, delivery_address, dispatch_preference,
			is_personal_payment, personal_payment_amount, status, is_split,
			item_count, total, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := ex.ExecContext(ctx, query,
		order.ID,
		order.EmployeeID,
		order.CompanyID,
		order.DeliveryAddress,
		order.DispatchPreference,
		order.IsPersonalPayment,
		order.PersonalPaymentAmount.String(),
		order.Status,
		order.IsSplit,
		order.ItemCount,
		order.Total.String(),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		itemQuery := `
			INSERT INTO order_items (
				order_id, product_id, name, category, size, quantity, unit_price, vendor_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := ex.ExecContext(ctx, itemQuery,
			order.ID,
			item.ProductID,
			item.Name,
			item.Category,
			item.Size,
			item.Quantity,
			item.UnitPrice.String(),
			item.VendorID,
		); err != nil {
			r.logger.Error("Failed to create order item", zap.Error(err))
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	for _, split := range order.Splits {
		splitQuery := `
			INSERT INTO order_splits (
				id, parent_id, vendor_id, item_count, total, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := ex.ExecContext(ctx, splitQuery,
			split.ID,
			split.ParentID,
			split.VendorID,
			split.ItemCount,
			split.Total.String(),
			split.Status,
			split.CreatedAt,
			split.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to create order split", zap.Error(err))
			return fmt.Errorf("failed to create order split: %w", err)
		}
	}

	return nil
}

const orderColumns = `
	id, employee_id, company_id, delivery_address, dispatch_preference,
	is_personal_payment, personal_payment_amount, status,
	pr_number, pr_date, po_number, approved_by, approved_at,
	is_split, item_count, total, created_at, updated_at
`

// GetByID retrieves an order with its items and splits. Returns nil without
// error when the id is unknown.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	row := ex.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	if order.IsSplit {
		if err := r.loadSplits(ctx, order); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// FindSplit retrieves a split child by its own id. Returns nil without
// error when the id is unknown.
func (r *OrderRepository) FindSplit(ctx context.Context, id string) (*entity.OrderSplit, error) {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	query := `
		SELECT id, parent_id, vendor_id, item_count, total, status,
			pr_number, pr_date, po_number, approved_by, approved_at,
			created_at, updated_at
		FROM order_splits
		WHERE id = ?
	`
	split, err := scanSplit(ex.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find split", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to find split: %w", err)
	}
	return split, nil
}

// List retrieves orders matching the filter, most recent first.
func (r *OrderRepository) List(ctx context.Context, filter port.ListOrdersFilter) ([]*entity.Order, error) {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	query := `SELECT ` + orderColumns + ` FROM orders`
	var conds []string
	var args []interface{}
	if filter.EmployeeID != "" {
		conds = append(conds, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
		if order.IsSplit {
			if err := r.loadSplits(ctx, order); err != nil {
				return nil, err
			}
		}
	}
	return orders, nil
}

// TransitionOrder conditionally advances an order's status. The WHERE clause
// on the expected status makes the transition at-most-once under concurrent
// attempts; a lost race reports false, never a corrupted row.
func (r *OrderRepository) TransitionOrder(ctx context.Context, id, fromStatus, toStatus string, meta port.TransitionMeta) (bool, error) {
	return r.transition(ctx, "orders", id, fromStatus, toStatus, meta)
}

// TransitionSplit is TransitionOrder for a split child.
func (r *OrderRepository) TransitionSplit(ctx context.Context, id, fromStatus, toStatus string, meta port.TransitionMeta) (bool, error) {
	return r.transition(ctx, "order_splits", id, fromStatus, toStatus, meta)
}

func (r *OrderRepository) transition(ctx context.Context, table, id, fromStatus, toStatus string, meta port.TransitionMeta) (bool, error) {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	sets := []string{"status = ?", "updated_at = ?"}
	args := []interface{}{toStatus, time.Now().UTC()}
	if meta.PRNumber != "" {
		sets = append(sets, "pr_number = ?")
		args = append(args, meta.PRNumber)
	}
	if meta.PRDate != nil {
		sets = append(sets, "pr_date = ?")
		args = append(args, *meta.PRDate)
	}
	if meta.PONumber != "" {
		sets = append(sets, "po_number = ?")
		args = append(args, meta.PONumber)
	}
	if meta.ApprovedBy != "" {
		sets = append(sets, "approved_by = ?")
		args = append(args, meta.ApprovedBy)
	}
	if meta.ApprovedAt != nil {
		sets = append(sets, "approved_at = ?")
		args = append(args, *meta.ApprovedAt)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND status = ?", table, strings.Join(sets, ", "))
	args = append(args, id, fromStatus)

	result, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to transition", zap.String("table", table), zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to transition %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, order *entity.Order) error {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	query := `
		SELECT id, product_id, name, category, size, quantity, unit_price, vendor_id
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`
	rows, err := ex.QueryContext(ctx, query, order.ID)
	if err != nil {
		r.logger.Error("Failed to load order items", zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	order.Items = nil
	for rows.Next() {
		var item entity.OrderItem
		var unitPrice string
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Name,
			&item.Category,
			&item.Size,
			&item.Quantity,
			&unitPrice,
			&item.VendorID,
		); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		item.UnitPrice, err = decimal.NewFromString(unitPrice)
		if err != nil {
			return fmt.Errorf("failed to parse unit price: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *OrderRepository) loadSplits(ctx context.Context, order *entity.Order) error {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	query := `
		SELECT id, parent_id, vendor_id, item_count, total, status,
			pr_number, pr_date, po_number, approved_by, approved_at,
			created_at, updated_at
		FROM order_splits
		WHERE parent_id = ?
		ORDER BY created_at, id
	`
	rows, err := ex.QueryContext(ctx, query, order.ID)
	if err != nil {
		r.logger.Error("Failed to load splits", zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("failed to load splits: %w", err)
	}
	defer rows.Close()

	order.Splits = nil
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		for _, item := range order.Items {
			if item.VendorID == split.VendorID {
				split.Items = append(split.Items, item)
			}
		}
		order.Splits = append(order.Splits, split)
	}
	return rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(s scanner) (*entity.Order, error) {
	var order entity.Order
	var personalAmount, total string
	var prNumber, poNumber, approvedBy sql.NullString
	var prDate, approvedAt sql.NullTime

	err := s.Scan(
		&order.ID,
		&order.EmployeeID,
		&order.CompanyID,
		&order.DeliveryAddress,
		&order.DispatchPreference,
		&order.IsPersonalPayment,
		&personalAmount,
		&order.Status,
		&prNumber,
		&prDate,
		&poNumber,
		&approvedBy,
		&approvedAt,
		&order.IsSplit,
		&order.ItemCount,
		&total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if order.PersonalPaymentAmount, err = decimal.NewFromString(personalAmount); err != nil {
		return nil, fmt.Errorf("failed to parse personal payment amount: %w", err)
	}
	if order.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("failed to parse total: %w", err)
	}
	order.PRNumber = prNumber.String
	order.PONumber = poNumber.String
	order.ApprovedBy = approvedBy.String
	if prDate.Valid {
		order.PRDate = &prDate.Time
	}
	if approvedAt.Valid {
		order.ApprovedAt = &approvedAt.Time
	}
	return &order, nil
}

func scanSplit(s scanner) (*entity.OrderSplit, error) {
	var split entity.OrderSplit
	var total string
	var prNumber, poNumber, approvedBy sql.NullString
	var prDate, approvedAt sql.NullTime

	err := s.Scan(
		&split.ID,
		&split.ParentID,
		&split.VendorID,
		&split.ItemCount,
		&total,
		&split.Status,
		&prNumber,
		&prDate,
		&poNumber,
		&approvedBy,
		&approvedAt,
		&split.CreatedAt,
		&split.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if split.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("failed to parse split total: %w", err)
	}
	split.PRNumber = prNumber.String
	split.PONumber = poNumber.String
	split.ApprovedBy = approvedBy.String
	if prDate.Valid {
		split.PRDate = &prDate.Time
	}
	if approvedAt.Valid {
		split.ApprovedAt = &approvedAt.Time
	}
	return &split, nil
}

// Verify interface compliance
var _ port.OrderRepository = (*OrderRepository)(nil)
