package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	liberrors "github.com/adfharrison1/go-library/pkg/errors"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := liberrors.NotFound("book with ISBN %s not found", "111")

	assert.True(t, liberrors.Is(err, liberrors.ErrNotFound))
	assert.False(t, liberrors.Is(err, liberrors.ErrDuplicateKey))
	assert.Equal(t, "book with ISBN 111 not found", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	wrapped := fmt.Errorf("borrow: %w", liberrors.InvalidOperation("already borrowed"))

	assert.True(t, liberrors.Is(wrapped, liberrors.ErrInvalidOperation))
	assert.Equal(t, liberrors.CodeInvalidOperation, liberrors.CodeOf(wrapped))
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := liberrors.ErrInternal.WithCause(cause)

	assert.Equal(t, "internal error: disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, err.Expected())
}

func TestError_WithDetails(t *testing.T) {
	err := liberrors.ValidationWithDetails("validation failed", map[string]string{"isbn": "is required"})
	copied := err.WithDetails(map[string]string{"title": "is required"})

	assert.Equal(t, map[string]string{"isbn": "is required"}, err.Details)
	assert.Equal(t, map[string]string{"title": "is required"}, copied.Details)
	assert.True(t, copied.Expected())
}

func TestIndexOutOfRange(t *testing.T) {
	err := liberrors.IndexOutOfRange(5, 3)

	assert.Equal(t, "index 5 out of range [0, 3)", err.Error())
	assert.ErrorIs(t, err, liberrors.ErrIndexOutOfRange)
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, liberrors.CodeInternal, liberrors.CodeOf(fmt.Errorf("plain")))
}
