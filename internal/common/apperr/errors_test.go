package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrUnauthenticated, fiber.StatusUnauthorized},
		{ErrForbidden, fiber.StatusForbidden},
		{NotFound("parentCategory"), fiber.StatusNotFound},
		{ErrDuplicateName, fiber.StatusConflict},
		{ErrMaxDepthExceeded, fiber.StatusUnprocessableEntity},
		{ErrHasProducts, fiber.StatusConflict},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, Status(tc.err), tc.err.Error())
	}
}

func TestWrappedErrorsKeepKind(t *testing.T) {
	err := fmt.Errorf("create category: %w", ErrMaxDepthExceeded)

	assert.True(t, errors.Is(err, ErrMaxDepthExceeded))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "parentCategory", FieldOf(err))
}

func TestPublicMessageHidesIdentityFailures(t *testing.T) {
	assert.Equal(t, "access denied", PublicMessage(ErrUnauthenticated))
	assert.Equal(t, "access denied", PublicMessage(ErrForbidden))
	assert.Equal(t, "internal server error", PublicMessage(Internal("load admin", errors.New("socket closed"))))
	assert.Equal(t, "children", FieldOf(ErrHasChildren))
}
