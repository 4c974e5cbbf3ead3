package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ljsim/internal/dynamo"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// 32 particles at the default density give a box too small for the cutoff,
// which only the simulation constructor detects.
func TestRunLeavesNoDirectoryWhenBuildFails(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "run", "--particles", "32", "--data", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrCutoffTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSweepLeavesNoDirectoryWhenBuildFails(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "sweep", "--temperatures", "1,2", "--parallel", "1", "--particles", "32", "--data", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrCutoffTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
