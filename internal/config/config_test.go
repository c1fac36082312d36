package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadAppliesOverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("maxLambdaSize: 1048576\ndev:\n  basePort: 4100\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nextbuilder.yml"), raw, 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, int64(1048576), cfg.MaxLambdaSize)
	require.Equal(t, 4100, cfg.Dev.BasePort)
	// Unset fields keep their defaults.
	require.Equal(t, "nodejs8.10", cfg.Runtime)
	require.Equal(t, Default().Dev.PortAttempts, cfg.Dev.PortAttempts)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nextbuilder.yml"), []byte("maxLambdaSize: {unterminated"), 0644))
	_, err := Load(dir)
	require.Error(t, err)
}
