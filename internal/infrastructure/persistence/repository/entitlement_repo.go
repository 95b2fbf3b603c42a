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

// EntitlementRepository implements port.EntitlementRepository. Entitlement
// rows are written by the entitlement-rules collaborator; this repository
// only reads them.
type EntitlementRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEntitlementRepository creates a new entitlement repository
func NewEntitlementRepository(db *sql.DB, logger *zap.Logger) port.EntitlementRepository {
	return &EntitlementRepository{
		db:     db,
		logger: logger,
	}
}

// GetEntitlement returns the employee's allowance budget, or nil without
// error when no record exists.
func (r *EntitlementRepository) GetEntitlement(ctx context.Context, employeeID string) (*entity.EmployeeEntitlement, error) {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := ex.QueryContext(ctx,
		`SELECT category, total FROM entitlements WHERE employee_id = ?`, employeeID)
	if err != nil {
		r.logger.Error("Failed to get entitlement", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}
	defer rows.Close()

	ent := &entity.EmployeeEntitlement{EmployeeID: employeeID}
	found := false
	for rows.Next() {
		var cat string
		var total int
		if err := rows.Scan(&cat, &total); err != nil {
			return nil, fmt.Errorf("failed to scan entitlement: %w", err)
		}
		found = true
		switch cat {
		case entity.CategoryShirt:
			ent.Shirt = total
		case entity.CategoryPant:
			ent.Pant = total
		case entity.CategoryShoe:
			ent.Shoe = total
		case entity.CategoryJacket:
			ent.Jacket = total
		default:
			if ent.Dynamic == nil {
				ent.Dynamic = make(map[string]int)
			}
			ent.Dynamic[cat] = total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entitlements: %w", err)
	}
	if !found {
		return nil, nil
	}
	return ent, nil
}

// Verify interface compliance
var _ port.EntitlementRepository = (*EntitlementRepository)(nil)
