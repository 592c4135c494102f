package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "objectify.log")

	logger, err := NewFile(path, false)
	require.NoError(t, err)
	logger.Info("analysis complete")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "analysis complete")
}

func TestNewFile_EmptyPath(t *testing.T) {
	logger, err := NewFile("", true)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewCLI(t *testing.T) {
	logger, err := NewCLI(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = NewCLI(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(0))
}
