package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent-modification conflict that persisted
// after the repository exhausted its internal retries.
var ErrConflict = errors.New("conflicting concurrent operation")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrTenantMismatch indicates a referenced entity belongs to a different tenant.
// Handlers surface it as a not-found to avoid leaking existence across tenants.
var ErrTenantMismatch = errors.New("entity does not belong to tenant")

// Ledger validation errors.
var (
	// ErrUnbalancedPosting indicates a posting group whose debits do not equal its credits.
	ErrUnbalancedPosting = errors.New("posting group debits do not equal credits")

	// ErrDuplicateCode indicates an account code or SKU already in use within the tenant.
	ErrDuplicateCode = errors.New("code already exists for tenant")

	// ErrCurrencyMismatch indicates an operation that would mix currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrInvalidTransition indicates an illegal lifecycle state transition.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Stock business-rule errors. Callers may re-check state and retry with
// adjusted quantities.
var (
	// ErrInsufficientStock indicates a movement would drive on-hand below zero.
	ErrInsufficientStock = errors.New("insufficient stock on hand")

	// ErrInsufficientAvailable indicates a reservation exceeds net available stock.
	ErrInsufficientAvailable = errors.New("insufficient available stock")

	// ErrAlreadyReleased indicates a second release of the same reservation.
	ErrAlreadyReleased = errors.New("reservation already released")

	// ErrReservationConflict indicates a count adjustment that would leave
	// outstanding reservations above the counted on-hand quantity.
	ErrReservationConflict = errors.New("outstanding reservations exceed counted quantity")
)

// ErrIntegrity indicates a data-integrity violation (negative net available,
// cached balance diverging from the replayed log). It is fatal to the affected
// record: it must be reported, never silently corrected.
var ErrIntegrity = errors.New("data integrity violation")

// AppError wraps an underlying error with an HTTP-ish status code and a
// human-readable message for the API edge.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError carrying ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
