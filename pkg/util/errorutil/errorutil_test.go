package util

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatusAndCode(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewInvalidInput("bad"), "INVALID_INPUT", http.StatusBadRequest},
		{NewInvalidTransition("Closed", "Open"), "INVALID_TRANSITION", http.StatusBadRequest},
		{NewInvalidAssignee("no"), "INVALID_ASSIGNEE", http.StatusBadRequest},
		{NewInvalidToken(), "INVALID_TOKEN", http.StatusBadRequest},
		{NewNotFound("ticket"), "NOT_FOUND", http.StatusNotFound},
		{NewUnauthenticated("nope"), "UNAUTHENTICATED", http.StatusUnauthorized},
		{NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{NewConflict("raced"), "CONFLICT", http.StatusConflict},
		{NewPayloadTooLarge("big"), "PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{NewUnavailable(errors.New("down")), "UNAVAILABLE", http.StatusServiceUnavailable},
		{NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var domainErr *DomainError
		require.ErrorAs(t, tc.err, &domainErr)
		assert.Equal(t, tc.code, domainErr.Code)
		assert.Equal(t, tc.status, domainErr.HTTPStatus)
		assert.True(t, IsCode(tc.err, tc.code))
	}
}

func TestInvalidTransitionNamesBothStates(t *testing.T) {
	err := NewInvalidTransition("Closed", "In Progress")
	assert.Contains(t, err.Error(), "Closed")
	assert.Contains(t, err.Error(), "In Progress")
}

func TestToDomainErrorNormalizesForeignErrors(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	de := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", de.Code)

	de = ToDomainError(context.DeadlineExceeded)
	assert.Equal(t, "UNAVAILABLE", de.Code)
	assert.Equal(t, http.StatusServiceUnavailable, de.HTTPStatus)

	de = ToDomainError(fiber.ErrMethodNotAllowed)
	assert.Equal(t, http.StatusMethodNotAllowed, de.HTTPStatus)

	de = ToDomainError(errors.New("database password is hunter2"))
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, "internal server error", de.Message)
}

func TestToDomainErrorPreservesWrappedDomainError(t *testing.T) {
	wrapped := &DomainError{Code: "CONFLICT", Message: "raced", HTTPStatus: http.StatusConflict}
	assert.Same(t, wrapped, ToDomainError(wrapped))
}
