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

// CompanyRepository implements port.CompanyRepository.
type CompanyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *sql.DB, logger *zap.Logger) port.CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID returns a company with its policy flags, or nil without error
// when the id is unknown.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	query := `
		SELECT id, name, allow_personal_payments, enable_pr_po_workflow,
			enable_site_admin_pr_approval, require_company_admin_po_approval,
			allow_multi_pr_po
		FROM companies
		WHERE id = ?
	`
	var company entity.Company
	err := ex.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.AllowPersonalPayments,
		&company.EnablePRPOWorkflow,
		&company.EnableSiteAdminPRApproval,
		&company.RequireCompanyAdminPOApproval,
		&company.AllowMultiPRPO,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get company", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

// Verify interface compliance
var _ port.CompanyRepository = (*CompanyRepository)(nil)
