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

// EmployeeRepository implements port.EmployeeRepository.
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) port.EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID returns an employee, or nil without error when the id is unknown.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	query := `
		SELECT id, company_id, name, email, location
		FROM employees
		WHERE id = ?
	`
	var employee entity.Employee
	err := ex.QueryRowContext(ctx, query, id).Scan(
		&employee.ID,
		&employee.CompanyID,
		&employee.Name,
		&employee.Email,
		&employee.Location,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get employee", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &employee, nil
}

// Verify interface compliance
var _ port.EmployeeRepository = (*EmployeeRepository)(nil)
