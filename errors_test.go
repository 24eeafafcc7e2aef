package eventgroup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidArgumentError(t *testing.T) {
	err := newInvalidArgument("eventgroup: priority Priority(9)", ErrUnknownPriority)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPriority))
	assert.Contains(t, err.Error(), "priority Priority(9)")
	assert.Contains(t, err.Error(), ErrUnknownPriority.Error())
}

func TestInvalidArgumentError_noCause(t *testing.T) {
	err := &InvalidArgumentError{Message: "eventgroup: bad thing"}
	assert.Equal(t, "eventgroup: bad thing", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestCloseError(t *testing.T) {
	e1 := errors.New("loop a failed")
	e2 := errors.New("loop b failed")

	var errs []error
	errs = appendCloseError(errs, nil)
	errs = appendCloseError(errs, e1)
	errs = appendCloseError(errs, e2)
	require.Len(t, errs, 2)

	ce := &CloseError{Errors: errs}
	assert.Contains(t, ce.Error(), "2 loop(s) failed")
	assert.True(t, errors.Is(ce, e1))
	assert.True(t, errors.Is(ce, e2))
}

func TestCloseError_singleton(t *testing.T) {
	e1 := errors.New("loop a failed")
	ce := &CloseError{Errors: []error{e1}}
	assert.Contains(t, ce.Error(), "loop a failed")
}
