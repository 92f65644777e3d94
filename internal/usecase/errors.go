package usecase

import (
	"errors"
	"fmt"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
)

// Rejection codes for checkout intake. Surfaced to the client as-is.
const (
	CodeEmptyCart          = "EMPTY_CART"
	CodeIncompleteShipping = "INCOMPLETE_SHIPPING"
	CodeMissingProductID   = "MISSING_PRODUCT_ID"
	CodeInvalidQuantity    = "INVALID_QUANTITY"
	CodeInvalidPrice       = "INVALID_PRICE"
	CodeInvalidTotal       = "INVALID_TOTAL"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
)

// IntakeError is a structured rejection of a submitted checkout payload.
// Always a client error (HTTP 400); Message is safe to show to the user.
type IntakeError struct {
	Code    string
	Message string
}

func (e *IntakeError) Error() string { return e.Message }

func intakeErrf(code, format string, args ...any) *IntakeError {
	return &IntakeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IllegalTransitionError rejects a status change the transition table forbids.
type IllegalTransitionError struct {
	From domain.Status
	To   domain.Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

var (
	// ErrUnauthorized rejects callers with no resolved identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrProductNotFound means a catalog lookup came back empty.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateOrderNumber maps the unique-key violation on order_number.
	// Safe for the caller to retry with a fresh number.
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	// ErrDuplicateCheckout means another request holds the idempotency lock.
	ErrDuplicateCheckout = errors.New("duplicate checkout in progress")
	// ErrStatusConflict means the order's status moved under us between the
	// legality check and the guarded update.
	ErrStatusConflict = errors.New("order status changed concurrently")
	// ErrBadStatus rejects a status value outside the enum.
	ErrBadStatus = errors.New("unknown order status")
	// ErrUnavailable maps transient persistence/connectivity failures (503).
	ErrUnavailable = errors.New("storage unavailable")
)
