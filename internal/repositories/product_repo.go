package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"commercehub/internal/common"
	"commercehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error)
	// DecrementStock performs the conditional "decrement if current >=
	// requested" update that guards concurrent order confirmation. It
	// fails with ErrInsufficientStock instead of ever under-selling.
	DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error
	RestoreStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error
	ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error)
	AdvancedSearch(ctx context.Context, tenantID uuid.UUID, filter *models.ProductSearchFilter) ([]*models.Product, error)
}

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, tenant_id, category_id, name, description, price, stock_quantity, low_stock_threshold, version, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.TenantID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
		&p.StockQuantity, &p.LowStockThreshold, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, tenant_id, category_id, name, description, price, stock_quantity, low_stock_threshold, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.TenantID, product.CategoryID, product.Name,
		product.Description, product.Price, product.StockQuantity, product.LowStockThreshold)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, stock_quantity = $5,
		    low_stock_threshold = $6, version = version + 1, updated_at = NOW()
		WHERE tenant_id = $7 AND id = $8
	`
	_, err := r.db.Exec(ctx, query, product.CategoryID, product.Name, product.Description, product.Price,
		product.StockQuantity, product.LowStockThreshold, product.TenantID, product.ID)
	return err
}

func (r *productRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	return r.queryProducts(ctx, query, tenantID, limit, offset)
}

func (r *productRepo) DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, version = version + 1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND stock_quantity >= $1
	`
	tag, err := r.db.Exec(ctx, query, quantity, tenantID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s cannot supply %d units", common.ErrInsufficientStock, productID, quantity)
	}
	return nil
}

func (r *productRepo) RestoreStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, version = version + 1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, quantity, tenantID, productID)
	return err
}

func (r *productRepo) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND stock_quantity <= low_stock_threshold ORDER BY stock_quantity`
	return r.queryProducts(ctx, query, tenantID)
}

// AdvancedSearch performs filtered product search for the dashboard
func (r *productRepo) AdvancedSearch(ctx context.Context, tenantID uuid.UUID, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	conditionCount := 1

	if filter.Query != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR COALESCE(description, '') ILIKE $%d)`, conditionCount, conditionCount)
		args = append(args, "%"+filter.Query+"%")
	}

	if filter.CategoryID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND category_id = $%d`, conditionCount)
		args = append(args, *filter.CategoryID)
	}

	validSortFields := map[string]bool{"name": true, "created_at": true, "price": true}
	sortField := "name"
	if validSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	return r.queryProducts(ctx, queryBase, args...)
}

func (r *productRepo) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
