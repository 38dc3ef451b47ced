package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies the core event a notification records.
type NotificationType string

const (
	NotificationTypeLowStock      NotificationType = "low_stock"
	NotificationTypeNewOrder      NotificationType = "new_order"
	NotificationTypeReturnRequest NotificationType = "return_request"
	NotificationTypePaymentFailed NotificationType = "payment_failed"
)

// NotificationPriority is fixed per event type by the emitter.
type NotificationPriority string

const (
	NotificationPriorityNormal   NotificationPriority = "normal"
	NotificationPriorityHigh     NotificationPriority = "high"
	NotificationPriorityCritical NotificationPriority = "critical"
)

// PriorityForType returns the priority the emitter assigns to each
// event type. One notification per event, priority fixed per type.
func PriorityForType(t NotificationType) NotificationPriority {
	switch t {
	case NotificationTypeNewOrder:
		return NotificationPriorityNormal
	case NotificationTypeLowStock, NotificationTypeReturnRequest:
		return NotificationPriorityHigh
	case NotificationTypePaymentFailed:
		return NotificationPriorityCritical
	default:
		return NotificationPriorityNormal
	}
}

// JSONB represents PostgreSQL JSONB type
type JSONB map[string]interface{}

// Notification is a persisted, tenant-scoped record of a core event.
// Business logic never mutates a notification after emission; only the
// read/unread toggles do.
type Notification struct {
	ID         uuid.UUID            `json:"id" db:"id"`
	TenantID   uuid.UUID            `json:"tenant_id" db:"tenant_id"`
	Type       NotificationType     `json:"type" db:"type"`
	Priority   NotificationPriority `json:"priority" db:"priority"`
	Title      string               `json:"title" db:"title"`
	Message    string               `json:"message" db:"message"`
	EntityType *string              `json:"entity_type,omitempty" db:"entity_type"`
	EntityID   *uuid.UUID           `json:"entity_id,omitempty" db:"entity_id"`
	IsRead     bool                 `json:"is_read" db:"is_read"`
	ReadAt     *time.Time           `json:"read_at,omitempty" db:"read_at"`
	Data       JSONB                `json:"data,omitempty" db:"data"`
	CreatedAt  time.Time            `json:"created_at" db:"created_at"`
}

// MarkRead flips the read flag and stamps the read time once.
func (n *Notification) MarkRead() {
	if n.IsRead {
		return
	}
	n.IsRead = true
	now := time.Now().UTC()
	n.ReadAt = &now
}

// LowStockData is the payload attached to low stock notifications.
type LowStockData struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	CurrentStock int       `json:"current_stock"`
	Threshold    int       `json:"threshold"`
}

// JSONB flattens the payload into the notification data column.
func (d LowStockData) JSONB() JSONB {
	return JSONB{
		"product_id":    d.ProductID.String(),
		"product_name":  d.ProductName,
		"current_stock": d.CurrentStock,
		"threshold":     d.Threshold,
	}
}
