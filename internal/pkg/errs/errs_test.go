package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"ordermanagement/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("should format without cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("order", "6f1c")

		assert.Equal(t, "order", err.ParamName)
		assert.Equal(t, "6f1c", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 6f1c", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("should format with cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := errs.NewObjectNotFoundErrorWithCause("order", "6f1c", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: order, ID is: 6f1c (cause: connection reset)",
			err.Error())
	})

	t.Run("should keep non-string ids verbatim", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("order", 42)
		assert.Equal(t, "object not found: %!s(int=42)", err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("should format without cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("status")

		assert.Equal(t, "value is invalid: status", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("should format with cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("status", errors.New("Completed cannot be cancelled"))

		assert.Equal(t, "value is invalid: status (cause: Completed cannot be cancelled)", err.Error())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("should report bounds", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("productName length", 2, 3, 200)

		assert.Equal(t, 2, err.Value)
		assert.Equal(t, 3, err.Min)
		assert.Equal(t, 200, err.Max)
		assert.Equal(t, "value is invalid: 2 is productName length, min value is 3, max value is 200", err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("should append cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeErrorWithCause("price", "-1", "0.01", "10", errors.New("negative"))

		assert.Equal(t, "value is invalid: -1 is price, min value is 0.01, max value is 10 (cause: negative)", err.Error())
	})

	t.Run("should strip newlines from values", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("productName", "Widget\nDeluxe", 3, 200)

		assert.Contains(t, err.Error(), "Widget Deluxe")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("should format without cause", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("productName")

		assert.Equal(t, "value is required: productName", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})

	t.Run("should format with cause", func(t *testing.T) {
		err := errs.NewValueIsRequiredErrorWithCause("productName", errors.New("blank"))

		assert.Equal(t, "value is required: productName (cause: blank)", err.Error())
	})
}

func TestErrorsCanBeUnwrapped(t *testing.T) {
	wrapped := fmt.Errorf("load order: %w", errs.NewObjectNotFoundError("order", "1"))

	require.ErrorIs(t, wrapped, errs.ErrObjectNotFound)
	require.ErrorIs(t, errs.NewValueIsInvalidError("x"), errs.ErrValueIsInvalid)
	require.ErrorIs(t, errs.NewValueIsOutOfRangeError("x", 1, 2, 3), errs.ErrValueIsOutOfRange)
	require.ErrorIs(t, errs.NewValueIsRequiredError("x"), errs.ErrValueIsRequired)

	var notFound *errs.ObjectNotFoundError
	require.ErrorAs(t, wrapped, &notFound)
	assert.Equal(t, "order", notFound.ParamName)
}
