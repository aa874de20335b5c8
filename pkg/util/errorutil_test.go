package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewNotAuthorized("nope")
	converted := ToDomainError(original)
	require.Equal(t, "NOT_AUTHORIZED", converted.Code)
	require.Equal(t, http.StatusForbidden, converted.HTTPStatus)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	converted := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	require.Equal(t, "NOT_FOUND", converted.Code)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	converted := ToDomainError(errors.New("boom"))
	require.Equal(t, "INTERNAL_ERROR", converted.Code)
	require.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
}

func TestPredicates(t *testing.T) {
	require.True(t, IsNotFound(NewNotFound("ticket")))
	require.True(t, IsNotFound(pgx.ErrNoRows))
	require.False(t, IsNotFound(NewNotAuthorized("x")))

	require.True(t, IsNotAuthorized(NewNotAuthorized("x")))
	require.True(t, IsInvalidState(NewInvalidState("x")))
	require.False(t, IsInvalidState(errors.New("plain")))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewInternalError(cause)
	require.ErrorIs(t, err, cause)
}
