package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"lapak/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := apperrors.New(apperrors.KindInsufficientStock, "insufficient stock for product %s", "prod-1")
	wrapped := fmt.Errorf("decrement stock: %w", err)

	assert.Equal(t, apperrors.KindInsufficientStock, apperrors.KindOf(wrapped))
	assert.True(t, apperrors.IsKind(wrapped, apperrors.KindInsufficientStock))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperrors.Wrap(apperrors.KindInvalidState, cause, "order %s has an unrecognized persisted status", "o-1")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "INVALID_STATE")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestUntypedErrorsAreInternal(t *testing.T) {
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(errors.New("boom")))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[apperrors.Kind]int{
		apperrors.KindNotFound:            http.StatusNotFound,
		apperrors.KindNoActiveCart:        http.StatusNotFound,
		apperrors.KindForbidden:           http.StatusForbidden,
		apperrors.KindConflict:            http.StatusConflict,
		apperrors.KindOutOfStock:          http.StatusBadRequest,
		apperrors.KindInsufficientStock:   http.StatusBadRequest,
		apperrors.KindProductsUnavailable: http.StatusBadRequest,
		apperrors.KindDuplicateLineItem:   http.StatusBadRequest,
		apperrors.KindLineMismatch:        http.StatusBadRequest,
		apperrors.KindQuantityMismatch:    http.StatusBadRequest,
		apperrors.KindEmptyCart:           http.StatusBadRequest,
		apperrors.KindAddressMismatch:     http.StatusBadRequest,
		apperrors.KindInvalidTransition:   http.StatusBadRequest,
		apperrors.KindInvalidInput:        http.StatusBadRequest,
		apperrors.KindInvalidState:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		err := apperrors.New(kind, "test")
		assert.Equal(t, want, apperrors.HTTPStatus(err), "kind %s", kind)
	}
}
