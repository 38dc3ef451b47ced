package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Domain error kinds. Services wrap these with fmt.Errorf("%w: ...") so
// handlers can map them to HTTP statuses with errors.Is.
var (
	// ErrTenantMismatch means an operation supplied a tenant ID that does
	// not own the entity it touched. This is fatal and must never be
	// reported as "not found".
	ErrTenantMismatch = errors.New("tenant mismatch")

	// ErrInvalidStateTransition means the aggregate's current status does
	// not permit the requested operation.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrEmptyOrder means an order with no lines was confirmed.
	ErrEmptyOrder = errors.New("order has no lines")

	// ErrValidation covers malformed input: non-positive quantity, empty
	// reason, discount out of bounds.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientStock is surfaced when the catalog's conditional
	// stock decrement refuses the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrNotFound = errors.New("not found")
)

// EnsureTenant is the tenant guard: it compares an entity's stored tenant
// against the tenant the operation was invoked for.
func EnsureTenant(entityTenantID, operationTenantID uuid.UUID) error {
	if entityTenantID != operationTenantID {
		return fmt.Errorf("%w: entity belongs to tenant %s, operation scoped to tenant %s",
			ErrTenantMismatch, entityTenantID, operationTenantID)
	}
	return nil
}

// SendDomainError maps a domain error kind to an HTTP response.
func SendDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrTenantMismatch):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("TENANT_MISMATCH", err.Error(), nil))
	case errors.Is(err, ErrInvalidStateTransition):
		return c.JSON(http.StatusConflict, CreateErrorResponse("INVALID_STATE_TRANSITION", err.Error(), nil))
	case errors.Is(err, ErrInsufficientStock):
		return c.JSON(http.StatusConflict, CreateErrorResponse("INSUFFICIENT_STOCK", err.Error(), nil))
	case errors.Is(err, ErrEmptyOrder):
		return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("EMPTY_ORDER", err.Error(), nil))
	case errors.Is(err, ErrValidation):
		return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", err.Error(), nil))
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", err.Error(), nil))
	default:
		return SendServerError(c, "operation could not be completed")
	}
}
