package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	invalid := NewValidationError("plan required", nil)
	wrapped := fmt.Errorf("handler: %w", invalid)
	de := ToDomainError(wrapped)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)

	de = ToDomainError(fiber.NewError(http.StatusNotFound, "Cannot GET /nope"))
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, "Cannot GET /nope", de.Message)

	plain := errors.New("boom")
	de = ToDomainError(plain)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorIs(t, de, plain)
}
