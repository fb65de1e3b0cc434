package solverr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		code int
	}{
		{KindInput, 2},
		{KindRouting, 3},
		{KindInfeasibility, 2},
		{KindCostOverflow, 1},
		{KindInternal, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, c.kind.ExitCode())
	}
}

func TestNewHasNoCause(t *testing.T) {
	err := New(KindInput, "missing vehicles")
	assert.Nil(t, err.Cause)
	assert.Equal(t, "input: missing vehicles", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindRouting, "fetching matrix", cause)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "routing")
	assert.Contains(t, err.Error(), "fetching matrix")
	assert.ErrorIs(t, err, cause)
}

func TestAsDiscriminates(t *testing.T) {
	var err error = New(KindCostOverflow, "bound exceeds range")
	se, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindCostOverflow, se.Kind)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
