package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Kind is a machine-readable error classification. Settlement clients branch
// on it to decide whether a failure needs operator follow-up.
type Kind string

const (
	KindNone                        Kind = ""
	KindPrescriptionNotFound        Kind = "PRESCRIPTION_NOT_FOUND"
	KindInventoryLookupFailed       Kind = "INVENTORY_LOOKUP_FAILED"
	KindInsufficientInventory       Kind = "INSUFFICIENT_INVENTORY"
	KindPatientReconciliationFailed Kind = "PATIENT_RECONCILIATION_FAILED"
	KindBillPersistenceFailed       Kind = "BILL_PERSISTENCE_FAILED"
	KindInventoryUpdateConflict     Kind = "INVENTORY_UPDATE_CONFLICT"
	KindInvalidBillAmount           Kind = "INVALID_BILL_AMOUNT"
	KindTimeout                     Kind = "TIMEOUT"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable      = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// Settlement error constructors. Each carries a Kind so the saga can map a
// step failure to a terminal result without string matching.

// NewPrescriptionNotFoundError is returned when a prescription is absent or
// belongs to a different owner.
func NewPrescriptionNotFoundError(id uuid.UUID) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindPrescriptionNotFound,
		Message: fmt.Sprintf("Prescription %s not found", id),
	}
}

// NewInventoryLookupFailedError is returned when a stock read fails before any
// mutation has happened.
func NewInventoryLookupFailedError(itemID uuid.UUID, cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindInventoryLookupFailed,
		Message: fmt.Sprintf("Failed to read stock for item %s: %v", itemID, cause),
	}
}

// NewInsufficientInventoryError names the offending item and both quantities.
func NewInsufficientInventoryError(name string, available, requested int) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInsufficientInventory,
		Message: fmt.Sprintf("Insufficient stock for %s: %d available, %d requested", name, available, requested),
	}
}

// NewPatientReconciliationFailedError wraps a patient create/update failure.
func NewPatientReconciliationFailedError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindPatientReconciliationFailed,
		Message: fmt.Sprintf("Failed to reconcile patient record: %v", cause),
	}
}

// NewBillPersistenceFailedError wraps a bill or bill-item write failure.
func NewBillPersistenceFailedError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindBillPersistenceFailed,
		Message: fmt.Sprintf("Failed to persist bill: %v", cause),
	}
}

// NewInventoryUpdateConflictError is returned after the decrement retry budget
// for an item is exhausted.
func NewInventoryUpdateConflictError(itemID uuid.UUID) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInventoryUpdateConflict,
		Message: fmt.Sprintf("Concurrent stock update conflict on item %s", itemID),
	}
}

// NewInvalidBillAmountError is returned when the computed total is zero or
// negative.
func NewInvalidBillAmountError(total int64) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInvalidBillAmount,
		Message: fmt.Sprintf("Bill total must be positive, got %d", total),
	}
}

// NewTimeoutError is returned when the caller's deadline expires before the
// settlement reaches a success terminal state.
func NewTimeoutError(step string) *AppError {
	return &AppError{
		Code:    http.StatusGatewayTimeout,
		Kind:    KindTimeout,
		Message: fmt.Sprintf("Settlement deadline exceeded during %s", step),
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}

// KindOf returns the Kind of an error, or KindNone for non-app errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindNone
}
