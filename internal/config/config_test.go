package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "ichthus", cfg.Name)
	assert.Equal(t, "Ichthus", cfg.Namespaces.RootSegment)
	assert.Equal(t, "Core", cfg.Namespaces.CoreSegment)
	assert.Equal(t, 4, cfg.Namespaces.MaxDepth)
	assert.Contains(t, cfg.Naming.Acronyms, "EDI")
	assert.Equal(t, "Button", cfg.Naming.ControlPrefixes["btn"])
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Namespaces, cfg.Namespaces)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `namespaces:
  root_segment: Acme
  max_depth: 6
rules:
  disabled: [ICH402]
  severity:
    ICH010: error
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme", cfg.Namespaces.RootSegment)
	assert.Equal(t, 6, cfg.Namespaces.MaxDepth)
	assert.True(t, cfg.RuleDisabled("ICH402"))
	assert.False(t, cfg.RuleDisabled("ICH010"))
	assert.Equal(t, "error", cfg.Rules.Severity["ICH010"])
	// Untouched sections keep defaults
	assert.Equal(t, "Core", cfg.Namespaces.CoreSegment)
}

func TestLoad_RejectsBadSeverity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `rules:
  severity:
    ICH010: fatal
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown severity")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("ICHTHUS_WORKSPACE sets workspace", func(t *testing.T) {
		t.Setenv("ICHTHUS_WORKSPACE", "/srv/code")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/srv/code", cfg.Workspace)
	})

	t.Run("ICHTHUS_DISABLED_RULES appends rule IDs", func(t *testing.T) {
		t.Setenv("ICHTHUS_DISABLED_RULES", "ICH010, ICH402")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.RuleDisabled("ICH010"))
		assert.True(t, cfg.RuleDisabled("ICH402"))
	})

	t.Run("ICHTHUS_DEBUG enables debug mode", func(t *testing.T) {
		t.Setenv("ICHTHUS_DEBUG", "1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Namespaces.RootSegment = "Fleet"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Fleet", loaded.Namespaces.RootSegment)
}

func TestGetWatchDebounce(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "500ms", cfg.Watch.Debounce)

	cfg.Watch.Debounce = "garbage"
	assert.Equal(t, int64(500), cfg.GetWatchDebounce().Milliseconds())
}
