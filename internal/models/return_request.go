package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"commercehub/internal/common"
)

// ReturnStatus is the return request approval state machine tag.
type ReturnStatus string

const (
	ReturnStatusPending    ReturnStatus = "pending"
	ReturnStatusApproved   ReturnStatus = "approved"
	ReturnStatusRejected   ReturnStatus = "rejected"
	ReturnStatusProcessing ReturnStatus = "processing"
	ReturnStatusCompleted  ReturnStatus = "completed"
)

// ReturnStatusDisplayText maps a return status to user-facing text.
func ReturnStatusDisplayText(s ReturnStatus) string {
	switch s {
	case ReturnStatusPending:
		return "Pending Review"
	case ReturnStatusApproved:
		return "Approved"
	case ReturnStatusRejected:
		return "Rejected"
	case ReturnStatusProcessing:
		return "Processing"
	case ReturnStatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// ReturnRequest is the follow-on workflow hanging off one delivered
// order line. It owns its own approval state machine:
// pending -> approved -> processing -> completed, rejected only from
// pending.
type ReturnRequest struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	TenantID       uuid.UUID    `json:"tenant_id" db:"tenant_id"`
	OrderID        uuid.UUID    `json:"order_id" db:"order_id"`
	OrderLineID    uuid.UUID    `json:"order_line_id" db:"order_line_id"`
	ProductID      uuid.UUID    `json:"product_id" db:"product_id"`
	CustomerID     uuid.UUID    `json:"customer_id" db:"customer_id"`
	Quantity       int          `json:"quantity" db:"quantity"`
	Reason         string       `json:"reason" db:"reason"`
	Comments       *string      `json:"comments,omitempty" db:"comments"`
	Status         ReturnStatus `json:"status" db:"status"`
	AdminResponse  *string      `json:"admin_response,omitempty" db:"admin_response"`
	RequestDate    time.Time    `json:"request_date" db:"request_date"`
	ResolutionDate *time.Time   `json:"resolution_date,omitempty" db:"resolution_date"`
}

// NewReturnRequest validates and builds a pending return request.
func NewReturnRequest(tenantID, orderID, orderLineID, productID, customerID uuid.UUID, quantity int, reason string, comments *string) (*ReturnRequest, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant ID is required", common.ErrValidation)
	}
	if orderID == uuid.Nil || orderLineID == uuid.Nil || productID == uuid.Nil || customerID == uuid.Nil {
		return nil, fmt.Errorf("%w: order, order line, product and customer IDs are required", common.ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: return quantity must be positive", common.ErrValidation)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: return reason is required", common.ErrValidation)
	}

	return &ReturnRequest{
		ID:          uuid.New(),
		TenantID:    tenantID,
		OrderID:     orderID,
		OrderLineID: orderLineID,
		ProductID:   productID,
		CustomerID:  customerID,
		Quantity:    quantity,
		Reason:      strings.TrimSpace(reason),
		Comments:    comments,
		Status:      ReturnStatusPending,
		RequestDate: time.Now().UTC(),
	}, nil
}

func (r *ReturnRequest) resolve(status ReturnStatus, response *string) {
	r.Status = status
	if response != nil {
		r.AdminResponse = response
	}
	now := time.Now().UTC()
	r.ResolutionDate = &now
}

// Approve accepts a pending request and stamps the resolution date.
func (r *ReturnRequest) Approve(response *string) error {
	if r.Status != ReturnStatusPending {
		return fmt.Errorf("%w: can only approve return request in status %q, current status %q",
			common.ErrInvalidStateTransition, ReturnStatusPending, r.Status)
	}
	r.resolve(ReturnStatusApproved, response)
	return nil
}

// Reject declines a pending request and stamps the resolution date.
func (r *ReturnRequest) Reject(response *string) error {
	if r.Status != ReturnStatusPending {
		return fmt.Errorf("%w: can only reject return request in status %q, current status %q",
			common.ErrInvalidStateTransition, ReturnStatusPending, r.Status)
	}
	r.resolve(ReturnStatusRejected, response)
	return nil
}

// MarkProcessing moves an approved request into processing.
func (r *ReturnRequest) MarkProcessing(response *string) error {
	if r.Status != ReturnStatusApproved {
		return fmt.Errorf("%w: can only process return request in status %q, current status %q",
			common.ErrInvalidStateTransition, ReturnStatusApproved, r.Status)
	}
	r.Status = ReturnStatusProcessing
	if response != nil {
		r.AdminResponse = response
	}
	return nil
}

// Complete finishes a processing request, overwriting the resolution
// date with the completion instant.
func (r *ReturnRequest) Complete(response *string) error {
	if r.Status != ReturnStatusProcessing {
		return fmt.Errorf("%w: can only complete return request in status %q, current status %q",
			common.ErrInvalidStateTransition, ReturnStatusProcessing, r.Status)
	}
	r.resolve(ReturnStatusCompleted, response)
	return nil
}
