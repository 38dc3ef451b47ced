package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a read-mostly catalog fact consumed by the order and
// pricing core. It is owned by the catalog subsystem; the core reads
// price, stock and category membership and decrements stock through a
// conditional update guarded by the version column.
type Product struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	TenantID          uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	CategoryID        *uuid.UUID      `json:"category_id" db:"category_id"`
	Name              string          `json:"name" db:"name"`
	Description       *string         `json:"description" db:"description"`
	Price             decimal.Decimal `json:"price" db:"price"`
	StockQuantity     int             `json:"stock_quantity" db:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold" db:"low_stock_threshold"`
	Version           int64           `json:"version" db:"version"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// LowOnStock reports whether the product sits at or below its
// configured threshold.
func (p *Product) LowOnStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

// ProductSearchFilter holds search and filter criteria for catalog queries
type ProductSearchFilter struct {
	Query      string     `json:"query,omitempty"`       // Full-text search across name, description
	CategoryID *uuid.UUID `json:"category_id,omitempty"` // Filter by category
	SortBy     string     `json:"sort_by,omitempty"`     // Sort field: name, created_at, price
	SortOrder  string     `json:"sort_order,omitempty"`  // Sort order: asc, desc
	Limit      int        `json:"limit,omitempty"`       // Page size (default: 50)
	Offset     int        `json:"offset,omitempty"`      // Page offset
}
