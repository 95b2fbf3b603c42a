package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/uniformhq/uniform-orders/internal/application/port"
	"github.com/uniformhq/uniform-orders/internal/domain/entity"
	"github.com/uniformhq/uniform-orders/internal/infrastructure/persistence/sqlite"
)

// ConsumptionRepository implements port.ConsumptionRepository.
type ConsumptionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConsumptionRepository creates a new consumption repository
func NewConsumptionRepository(db *sql.DB, logger *zap.Logger) port.ConsumptionRepository {
	return &ConsumptionRepository{
		db:     db,
		logger: logger,
	}
}

// GetConsumed returns the employee's consumed entitlement, or nil without
// error when nothing has been consumed yet.
func (r *ConsumptionRepository) GetConsumed(ctx context.Context, employeeID string) (*entity.ConsumedEntitlement, error) {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := ex.QueryContext(ctx,
		`SELECT category, quantity FROM consumed_entitlements WHERE employee_id = ?`, employeeID)
	if err != nil {
		r.logger.Error("Failed to get consumption", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, fmt.Errorf("failed to get consumption: %w", err)
	}
	defer rows.Close()

	consumed := &entity.ConsumedEntitlement{EmployeeID: employeeID}
	found := false
	for rows.Next() {
		var cat string
		var qty int
		if err := rows.Scan(&cat, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan consumption: %w", err)
		}
		found = true
		switch cat {
		case entity.CategoryShirt:
			consumed.Shirt = qty
		case entity.CategoryPant:
			consumed.Pant = qty
		case entity.CategoryShoe:
			consumed.Shoe = qty
		case entity.CategoryJacket:
			consumed.Jacket = qty
		default:
			if consumed.Dynamic == nil {
				consumed.Dynamic = make(map[string]int)
			}
			consumed.Dynamic[cat] = qty
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate consumption: %w", err)
	}
	if !found {
		return nil, nil
	}
	return consumed, nil
}

// Increment atomically adds qty to the employee's consumption for the
// category. The upsert makes repeated increments additive, never lost.
func (r *ConsumptionRepository) Increment(ctx context.Context, employeeID, category string, qty int) error {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	query := `
		INSERT INTO consumed_entitlements (employee_id, category, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT (employee_id, category)
		DO UPDATE SET quantity = quantity + excluded.quantity
	`
	if _, err := ex.ExecContext(ctx, query, employeeID, category, qty); err != nil {
		r.logger.Error("Failed to increment consumption",
			zap.String("employee_id", employeeID),
			zap.String("category", category),
			zap.Error(err))
		return fmt.Errorf("failed to increment consumption: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.ConsumptionRepository = (*ConsumptionRepository)(nil)
