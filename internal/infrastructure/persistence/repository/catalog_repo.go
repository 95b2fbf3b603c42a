package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uniformhq/uniform-orders/internal/application/port"
	"github.com/uniformhq/uniform-orders/internal/domain/entity"
	"github.com/uniformhq/uniform-orders/internal/infrastructure/persistence/sqlite"
)

// CatalogRepository implements port.CatalogRepository backed by the local
// product/vendor tables.
type CatalogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sql.DB, logger *zap.Logger) port.CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

// GetProduct resolves a product to its category, price and vendor. Returns
// nil without error when the product is unknown.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	ex := sqlite.ExecutorFrom(ctx, r.db)

	query := `
		SELECT id, name, category, sizes, price, vendor_id
		FROM products
		WHERE id = ?
	`
	var product entity.Product
	var price string
	err := ex.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Sizes,
		&price,
		&product.VendorID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get product", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("failed to parse product price: %w", err)
	}
	return &product, nil
}

// Verify interface compliance
var _ port.CatalogRepository = (*CatalogRepository)(nil)
