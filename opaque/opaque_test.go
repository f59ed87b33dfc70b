package opaque

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentError struct{}

func (silentError) Error() string { return "" }

type codeError struct {
	code int
}

func (e *codeError) Error() string { return fmt.Sprintf("code %d", e.code) }

func TestErasePreservesMessage(t *testing.T) {
	orig := errors.New("connection refused by policy")
	err := Erase(orig)
	require.EqualError(t, err, "connection refused by policy")
	require.ErrorIs(t, err, orig)
}

func TestEraseKeepsTypedError(t *testing.T) {
	err := Erase(&codeError{code: 42})
	require.EqualError(t, err, "code 42")
	var ce *codeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 42, ce.code)
}

func TestEraseEmptyMessage(t *testing.T) {
	err := Erase(silentError{})
	require.EqualError(t, err, "opaque.silentError")
	require.ErrorIs(t, err, silentError{})
}

func TestEraseNil(t *testing.T) {
	var err error
	require.EqualError(t, Erase(err), NilMessage)
}

func TestEraseNilPointer(t *testing.T) {
	var ce *codeError
	err := Erase(ce)
	require.EqualError(t, err, "*opaque.codeError(nil)")
}

func TestEraseIdempotent(t *testing.T) {
	err := Erase(errors.New("oops"))
	require.Same(t, err, Erase(err))
}

func TestEraseNeverEmpty(t *testing.T) {
	var nilErr error
	var nilCode *codeError
	for _, err := range []error{
		Erase(errors.New("x")),
		Erase(silentError{}),
		Erase(nilErr),
		Erase(nilCode),
		Erase(fmt.Errorf("wrapped: %w", silentError{})),
	} {
		assert.NotEmpty(t, err.Error())
	}
}
