package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"commercehub/internal/common"
)

// OrderStatus is the order lifecycle state machine tag.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Valid reports whether the status is one of the known tags.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// DisplayText maps a status tag to user-facing text. Kept separate from
// the transition checks so presentation never leaks into legality rules.
func DisplayText(s OrderStatus) string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCompleted:
		return "Completed"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// OrderLine is one priced product position inside an order.
type OrderLine struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// Total returns quantity x unit price for this line.
func (l *OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the order aggregate root. TotalAmount is derived and kept
// equal to the sum of line totals on every line mutation. Lines may be
// changed only while the order is pending.
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	TenantID          uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	CustomerID        uuid.UUID       `json:"customer_id" db:"customer_id"`
	ShippingAddressID uuid.UUID       `json:"shipping_address_id" db:"shipping_address_id"`
	Status            OrderStatus     `json:"status" db:"status"`
	TotalAmount       decimal.Decimal `json:"total_amount" db:"total_amount"`
	OrderDate         time.Time       `json:"order_date" db:"order_date"`
	Received          bool            `json:"received" db:"received"`
	Lines             []*OrderLine    `json:"lines" db:"-"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// NewOrder creates an empty pending order for the given tenant. Orders
// always start with no lines and a zero total.
func NewOrder(tenantID, customerID, shippingAddressID uuid.UUID) (*Order, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant ID is required", common.ErrValidation)
	}
	if customerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer ID is required", common.ErrValidation)
	}
	if shippingAddressID == uuid.Nil {
		return nil, fmt.Errorf("%w: shipping address ID is required", common.ErrValidation)
	}

	now := time.Now().UTC()
	return &Order{
		ID:                uuid.New(),
		TenantID:          tenantID,
		CustomerID:        customerID,
		ShippingAddressID: shippingAddressID,
		Status:            OrderStatusPending,
		TotalAmount:       decimal.Zero,
		OrderDate:         now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (o *Order) recomputeTotal() {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Total())
	}
	o.TotalAmount = total
	o.UpdatedAt = time.Now().UTC()
}

// AddLine appends a priced line, merging quantity into an existing line
// for the same product. Legal only while the order is pending.
func (o *Order) AddLine(productID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: cannot add lines to order in status %q", common.ErrInvalidStateTransition, o.Status)
	}
	if productID == uuid.Nil {
		return fmt.Errorf("%w: product ID is required", common.ErrValidation)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", common.ErrValidation)
	}
	if unitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price cannot be negative", common.ErrValidation)
	}

	for _, line := range o.Lines {
		if line.ProductID == productID {
			line.Quantity += quantity
			line.UnitPrice = unitPrice
			o.recomputeTotal()
			return nil
		}
	}

	o.Lines = append(o.Lines, &OrderLine{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	o.recomputeTotal()
	return nil
}

// RemoveLine drops a line by ID. Legal only while the order is pending.
func (o *Order) RemoveLine(lineID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: cannot remove lines from order in status %q", common.ErrInvalidStateTransition, o.Status)
	}
	for i, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			o.recomputeTotal()
			return nil
		}
	}
	return fmt.Errorf("%w: order line %s", common.ErrNotFound, lineID)
}

// Confirm moves a non-empty pending order to processing.
func (o *Order) Confirm() error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: can only confirm order in status %q, current status %q",
			common.ErrInvalidStateTransition, OrderStatusPending, o.Status)
	}
	if len(o.Lines) == 0 {
		return fmt.Errorf("%w: confirm requires at least one line", common.ErrEmptyOrder)
	}
	o.Status = OrderStatusProcessing
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Ship moves a processing order to shipped.
func (o *Order) Ship() error {
	if o.Status != OrderStatusProcessing {
		return fmt.Errorf("%w: can only ship order in status %q, current status %q",
			common.ErrInvalidStateTransition, OrderStatusProcessing, o.Status)
	}
	o.Status = OrderStatusShipped
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Deliver moves a shipped order to delivered.
func (o *Order) Deliver() error {
	if o.Status != OrderStatusShipped {
		return fmt.Errorf("%w: can only deliver order in status %q, current status %q",
			common.ErrInvalidStateTransition, OrderStatusShipped, o.Status)
	}
	o.Status = OrderStatusDelivered
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkReceived records the customer acknowledgment on a delivered order.
// It is a flag on delivered, not a separate transition.
func (o *Order) MarkReceived() error {
	if o.Status != OrderStatusDelivered {
		return fmt.Errorf("%w: can only acknowledge receipt of delivered order, current status %q",
			common.ErrInvalidStateTransition, o.Status)
	}
	o.Received = true
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel moves the order to cancelled from any state except delivered
// and the terminal states.
func (o *Order) Cancel() error {
	if o.Status == OrderStatusDelivered || o.Status.Terminal() {
		return fmt.Errorf("%w: cannot cancel order in status %q", common.ErrInvalidStateTransition, o.Status)
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkPaid finalizes settlement, moving a delivered order to completed.
func (o *Order) MarkPaid() error {
	if o.Status != OrderStatusDelivered {
		return fmt.Errorf("%w: can only complete payment on order in status %q, current status %q",
			common.ErrInvalidStateTransition, OrderStatusDelivered, o.Status)
	}
	o.Status = OrderStatusCompleted
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// LineByID returns the line with the given ID, or nil.
func (o *Order) LineByID(lineID uuid.UUID) *OrderLine {
	for _, line := range o.Lines {
		if line.ID == lineID {
			return line
		}
	}
	return nil
}
