package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupServeFlags(t *testing.T) {
	fs, flags := SetupServeFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Equal(t, ":8080", flags.Addr)
		assert.Empty(t, flags.SchemasDir, "expected SchemasDir to be empty by default")
		assert.False(t, flags.Verbose, "expected Verbose to be false by default")
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{"--addr", ":9090", "--schemas", "./schemas", "--verbose"}
		require.NoError(t, fs.Parse(args))

		assert.Equal(t, ":9090", flags.Addr)
		assert.Equal(t, "./schemas", flags.SchemasDir)
		assert.True(t, flags.Verbose, "expected Verbose to be true")
	})
}

func TestHandleServe_Help(t *testing.T) {
	err := HandleServe([]string{"--help"})
	assert.NoError(t, err)
}

func TestHandleServe_PositionalArgs(t *testing.T) {
	err := HandleServe([]string{"extra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no positional arguments")
}

func TestHandleServe_UnreadableSchemasDir(t *testing.T) {
	// Preload failure aborts startup before any listener is opened.
	missing := filepath.Join(t.TempDir(), "nope")
	err := HandleServe([]string{"--schemas", missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enumerating schema sources")
}
