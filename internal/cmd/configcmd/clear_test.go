package configcmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/mdtree/internal/config"
)

func TestRunClear_WithExistingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg := &config.Config{OutputFormat: "json", Strict: true}
	configPath := filepath.Join(tmpDir, "mdt", "config.yml")
	require.NoError(t, cfg.Save(configPath))

	err := runClear("", true)
	require.NoError(t, err)

	// Verify file is deleted
	_, err = os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunClear_ExplicitPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, (&config.Config{OutputFormat: "tree"}).Save(configPath))

	require.NoError(t, runClear(configPath, true))

	_, err := os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunClear_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// Should not error even if file doesn't exist
	err := runClear("", true)
	require.NoError(t, err)
}

func TestRunClear_Idempotent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("MDT_STRICT", "true")

	// Running twice should succeed
	require.NoError(t, runClear("", true))
	require.NoError(t, runClear("", true))
}
