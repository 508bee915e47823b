package lib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesToConfiguredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.log")

	logger := Logger(path)
	logger.Info().Msg("startup complete")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "startup complete")
}

func TestLoggerAppendsDateWhenPathHasNoExtension(t *testing.T) {
	base := filepath.Join(t.TempDir(), "gateway")

	logger := Logger(base)
	logger.Info().Msg("startup complete")

	matches, err := filepath.Glob(base + "-*.log")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "startup complete")
}
