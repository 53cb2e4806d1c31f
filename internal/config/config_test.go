package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/workspace-lens/internal/workspace"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolateHome(t)
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, filepath.Join(home, ".wslens", "daemon.sock"), cfg.SocketPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "pnpm-workspace.yaml", cfg.Discovery.WorkspaceFile)
	assert.Equal(t, "package.json", cfg.Discovery.ManifestFile)
	assert.Equal(t, []string{"**/node_modules/**"}, cfg.Discovery.ExcludePatterns)
	assert.Equal(t, "first", cfg.Discovery.Nesting)
	assert.Equal(t, 4, cfg.Discovery.Workers)
	assert.True(t, cfg.Watcher.Enabled)
	assert.Equal(t, 300*time.Millisecond, cfg.Watcher.DebounceWindow)
}

func TestLoadLayering(t *testing.T) {
	home := isolateHome(t)
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".wslens"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".wslens", "config.yaml"), []byte(
		"log_level: debug\nscope: '@home'\ndiscovery:\n  workers: 8\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".wslens.yaml"), []byte(
		"scope: '@acme'\ndiscovery:\n  nesting: shortest\nwatcher:\n  debounce_window: 1s\n"), 0644))

	t.Setenv("WSLENS_LOG_FORMAT", "json")

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "@acme", cfg.Scope)
	assert.Equal(t, "shortest", cfg.Discovery.Nesting)
	assert.Equal(t, 8, cfg.Discovery.Workers)
	assert.Equal(t, time.Second, cfg.Watcher.DebounceWindow)
}

func TestLoadEnvOverridesNestedKey(t *testing.T) {
	isolateHome(t)
	t.Setenv("WSLENS_DISCOVERY_NESTING", "shortest")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "shortest", cfg.Discovery.Nesting)
}

func TestLoadKeepsNodeModulesExcluded(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".wslens.yaml"), []byte(
		"discovery:\n  exclude_patterns: ['**/dist/**']\n"), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/dist/**", NodeModulesPattern}, cfg.Discovery.ExcludePatterns)
	assert.Equal(t, cfg.Discovery.ExcludePatterns, cfg.WorkspaceOptions().Discover.ExcludePatterns)
}

func TestLoadRejectsInvalidNesting(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".wslens.yaml"), []byte("discovery:\n  nesting: deepest\n"), 0644))

	_, err := Load(root)
	assert.ErrorContains(t, err, "discovery.nesting")
}

func TestLoadReportsMalformedFile(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".wslens.yaml"), []byte("discovery: [\n"), 0644))

	_, err := Load(root)
	assert.ErrorContains(t, err, "read config")
}

func TestValidateClampsValues(t *testing.T) {
	cfg := &Config{Discovery: DiscoveryConfig{
		WorkspaceFile: "pnpm-workspace.yaml",
		ManifestFile:  "package.json",
		Nesting:       "first",
	}}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Discovery.Workers)
	assert.Equal(t, 300*time.Millisecond, cfg.Watcher.DebounceWindow)
	assert.Equal(t, 100, cfg.Watcher.MaxBatchSize)
	assert.Equal(t, []string{NodeModulesPattern}, cfg.Discovery.ExcludePatterns)
}

func TestWorkspaceOptions(t *testing.T) {
	isolateHome(t)
	t.Setenv("WSLENS_DISCOVERY_NESTING", "shortest")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	opts := cfg.WorkspaceOptions()
	assert.Equal(t, "pnpm-workspace.yaml", opts.WorkspaceFile)
	assert.Equal(t, workspace.NestingShortestWins, opts.Nesting)
	assert.Equal(t, "package.json", opts.Discover.ManifestFile)
	assert.Equal(t, 4, opts.Discover.Workers)
	assert.NotNil(t, opts.Reader)
}
