package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictRefinementsMatchConflict(t *testing.T) {
	assert.ErrorIs(t, ErrDuplicateKey, ErrConflict)
	assert.ErrorIs(t, ErrAlreadyPublished, ErrConflict)
	assert.NotErrorIs(t, ErrDuplicateKey, ErrAlreadyPublished)
}

func TestAbort_MatchesBothKinds(t *testing.T) {
	err := Abort(fmt.Errorf("insert listing: %w", ErrDuplicateKey))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionAborted)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "transaction aborted")
}

func TestAbort_NilAndIdempotent(t *testing.T) {
	require.NoError(t, Abort(nil))

	first := Abort(ErrNotFound)
	second := Abort(fmt.Errorf("wrapped: %w", first))

	var ae *AbortError
	require.True(t, errors.As(second, &ae))
	assert.Equal(t, ErrNotFound, ae.Cause)
}

func TestAbortError_NoCause(t *testing.T) {
	err := &AbortError{}
	assert.Equal(t, "transaction aborted", err.Error())
	assert.ErrorIs(t, err, ErrTransactionAborted)
}

func TestInvalid(t *testing.T) {
	err := Invalid("price must be positive, got %v", -1.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "invalid argument: price must be positive, got -1.5", err.Error())
}
