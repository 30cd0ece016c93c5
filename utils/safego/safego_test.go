package safego

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverError(t *testing.T) {
	run := func() (err error) {
		defer RecoverError(&err)
		panic("boom")
	}

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRecoverErrorKeepsResult(t *testing.T) {
	run := func() (err error) {
		defer RecoverError(&err)
		return nil
	}
	assert.NoError(t, run())
}

func TestRecoveryWithoutPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer Recovery(false)
	})
}
