package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business-rule failure so the HTTP boundary can map it
// to a status code without parsing error strings.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindOutOfStock          Kind = "OUT_OF_STOCK"
	KindInsufficientStock   Kind = "INSUFFICIENT_STOCK"
	KindProductsUnavailable Kind = "PRODUCTS_UNAVAILABLE"
	KindDuplicateLineItem   Kind = "DUPLICATE_LINE_ITEM"
	KindLineMismatch        Kind = "LINE_MISMATCH"
	KindQuantityMismatch    Kind = "QUANTITY_MISMATCH"
	KindNoActiveCart        Kind = "NO_ACTIVE_CART"
	KindEmptyCart           Kind = "EMPTY_CART"
	KindAddressMismatch     Kind = "ADDRESS_MISMATCH"
	KindInvalidTransition   Kind = "INVALID_TRANSITION"
	KindInvalidState        Kind = "INVALID_STATE"
	KindForbidden           Kind = "FORBIDDEN"
	KindConflict            Kind = "CONFLICT"
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindInternal            Kind = "INTERNAL"
)

// Error is a typed application error. Business-rule violations are created
// with New; infrastructure faults are wrapped with Wrap so the cause stays
// reachable through errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal
// for anything untyped (storage faults, programming errors).
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code the response envelope uses.
// Only the handler layer should consult this; services stay transport-agnostic.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound, KindNoActiveCart:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindOutOfStock, KindInsufficientStock, KindProductsUnavailable,
		KindDuplicateLineItem, KindLineMismatch, KindQuantityMismatch,
		KindEmptyCart, KindAddressMismatch, KindInvalidTransition,
		KindInvalidInput:
		return http.StatusBadRequest
	case KindInvalidState:
		// Corrupted persisted data, not a caller mistake.
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
