package repositories

import (
	"context"
	"errors"
	"fmt"

	"commercehub/internal/common"
	"commercehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error)
	CreateAddress(ctx context.Context, address *models.Address) error
	GetAddressByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
}

type customerRepo struct {
	db DB
}

func NewCustomerRepo(db DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, tenant_id, first_name, last_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, customer.ID, customer.TenantID, customer.FirstName, customer.LastName, customer.Email, customer.Phone)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `SELECT id, tenant_id, first_name, last_name, email, phone, created_at, updated_at FROM customers WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&customer.ID, &customer.TenantID, &customer.FirstName,
		&customer.LastName, &customer.Email, &customer.Phone, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	query := `SELECT id, tenant_id, first_name, last_name, email, phone, created_at, updated_at FROM customers WHERE tenant_id = $1 ORDER BY last_name, first_name LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(&customer.ID, &customer.TenantID, &customer.FirstName, &customer.LastName,
			&customer.Email, &customer.Phone, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func (r *customerRepo) CreateAddress(ctx context.Context, address *models.Address) error {
	query := `
		INSERT INTO addresses (id, tenant_id, customer_id, line1, line2, city, postal_code, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, address.ID, address.TenantID, address.CustomerID, address.Line1,
		address.Line2, address.City, address.PostalCode, address.Country)
	return err
}

func (r *customerRepo) GetAddressByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	address := &models.Address{}
	query := `SELECT id, tenant_id, customer_id, line1, line2, city, postal_code, country, created_at FROM addresses WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&address.ID, &address.TenantID, &address.CustomerID,
		&address.Line1, &address.Line2, &address.City, &address.PostalCode, &address.Country, &address.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: address %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return address, nil
}
