package repositories

import (
	"context"
	"errors"
	"fmt"

	"commercehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"commercehub/internal/common"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	// GetByID fetches by primary key only; the tenant guard in the
	// service layer decides whether the caller may see it. Tenant-scoped
	// lookups at the repo level would turn cross-tenant access into
	// "not found", which the guard forbids.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, order *models.Order) error
	SaveLines(ctx context.Context, order *models.Order) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, limit, offset int) ([]*models.Order, error)
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]*models.Order, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepo(db DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, tenant_id, customer_id, shipping_address_id, status, total_amount, order_date, received, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, order.ID, order.TenantID, order.CustomerID, order.ShippingAddressID,
		order.Status, order.TotalAmount, order.OrderDate, order.Received)
	return err
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT id, tenant_id, customer_id, shipping_address_id, status, total_amount, order_date, received, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.TenantID, &order.CustomerID, &order.ShippingAddressID,
		&order.Status, &order.TotalAmount, &order.OrderDate, &order.Received, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", common.ErrNotFound, id)
		}
		return nil, err
	}

	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) loadLines(ctx context.Context, order *models.Order) error {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		line := &models.OrderLine{}
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
			return err
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

// UpdateStatus persists the status, received flag and derived total.
func (r *orderRepo) UpdateStatus(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET status = $1, received = $2, total_amount = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, order.Status, order.Received, order.TotalAmount, order.TenantID, order.ID)
	return err
}

// SaveLines replaces the order's line set and its derived total in one
// transaction so the arithmetic invariant is never observable broken.
func (r *orderRepo) SaveLines(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, order.ID); err != nil {
		return err
	}

	for _, line := range order.Lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, line.ID, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET total_amount = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`, order.TotalAmount, order.TenantID, order.ID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, tenant_id, customer_id, shipping_address_id, status, total_amount, order_date, received, created_at, updated_at
		FROM orders
		WHERE tenant_id = $1
		ORDER BY order_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryOrders(ctx, query, tenantID, limit, offset)
}

func (r *orderRepo) ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, tenant_id, customer_id, shipping_address_id, status, total_amount, order_date, received, created_at, updated_at
		FROM orders
		WHERE tenant_id = $1 AND status = $2
		ORDER BY order_date DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryOrders(ctx, query, tenantID, status, limit, offset)
}

func (r *orderRepo) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, tenant_id, customer_id, shipping_address_id, status, total_amount, order_date, received, created_at, updated_at
		FROM orders
		WHERE tenant_id = $1 AND customer_id = $2
		ORDER BY order_date DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryOrders(ctx, query, tenantID, customerID, limit, offset)
}

func (r *orderRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.TenantID, &order.CustomerID, &order.ShippingAddressID,
			&order.Status, &order.TotalAmount, &order.OrderDate, &order.Received, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
