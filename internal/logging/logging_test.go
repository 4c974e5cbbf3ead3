package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	logger, err := New(false, 0)
	require.NoError(t, err)
	assert.True(t, logger.Enabled())
	assert.False(t, logger.V(DEBUG).Enabled())

	logger, err = New(true, DEBUG)
	require.NoError(t, err)
	assert.True(t, logger.V(DEBUG).Enabled())
	assert.False(t, logger.V(TRACE).Enabled())
}

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger()
	assert.True(t, logger.V(TRACE).Enabled())
	logger.V(DEBUG).Info("test logger ready", "level", TRACE)
}

func TestNewNop(t *testing.T) {
	assert.False(t, NewNop().Enabled())
}
