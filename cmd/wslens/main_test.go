package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/workspace-lens/internal/config"
	"github.com/alucardeht/workspace-lens/internal/daemon"
	"github.com/alucardeht/workspace-lens/internal/rpc"
	"github.com/alucardeht/workspace-lens/internal/workspace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newWorkspace(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pnpm-workspace.yaml"), "packages:\n  - 'apps/*'\n  - 'packages/*'\n")
	writeFile(t, filepath.Join(root, "apps", "web", "package.json"), `{"name": "@acme/web"}`)
	writeFile(t, filepath.Join(root, "packages", "ui", "package.json"), `{"name": "@acme/ui"}`)
	writeFile(t, filepath.Join(root, "packages", "billing-api", "package.json"), `{"name": "@acme/billing-api"}`)
	return root
}

// startServer serves root on a unix socket for the duration of the test.
func startServer(t *testing.T, root string) string {
	t.Helper()

	cfg, err := config.Load(root)
	require.NoError(t, err)
	explorer, err := workspace.NewExplorer(cfg.Root, cfg.WorkspaceOptions())
	require.NoError(t, err)
	t.Cleanup(explorer.Close)

	registry, err := newRegistry(cfg, explorer)
	require.NoError(t, err)

	socketPath := filepath.Join(t.TempDir(), "wslens.sock")
	d := daemon.NewDaemon(socketPath, rpc.NewServer(registry))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Start(ctx))
	t.Cleanup(func() {
		d.Shutdown()
		cancel()
	})
	return socketPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	color.NoColor = true
	remoteSocket, jsonOutput, listDomain = "", false, ""
	importsScope, importsFix = "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTreeCommand(t *testing.T) {
	root := newWorkspace(t)

	out, err := run(t, "tree", root)
	require.NoError(t, err)

	expected := root + "\n" +
		"├── apps/\n" +
		"│   └── @acme/web apps/web\n" +
		"└── packages/\n" +
		"    ├── @acme/billing-api packages/billing-api\n" +
		"    └── @acme/ui packages/ui\n"
	assert.Equal(t, expected, out)
}

func TestTreeCommandMissingConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, "tree", t.TempDir())
	assert.Error(t, err)
}

func TestListCommandDomain(t *testing.T) {
	root := newWorkspace(t)

	out, err := run(t, "list", root, "--domain", "billing")
	require.NoError(t, err)
	assert.Contains(t, out, "@acme/billing-api")
	assert.NotContains(t, out, "@acme/ui")
}

func TestListCommandJSON(t *testing.T) {
	root := newWorkspace(t)

	out, err := run(t, "list", root, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "@acme/web"`)
	assert.Contains(t, out, `"type": "package"`)
}

func TestAddDepCommand(t *testing.T) {
	root := newWorkspace(t)
	source := filepath.Join(root, "apps", "web", "src", "index.ts")
	writeFile(t, source, "export {}\n")

	out, err := run(t, "add-dep", source, "@acme/ui")
	require.NoError(t, err)
	assert.Contains(t, out, "added @acme/ui")

	data, err := os.ReadFile(filepath.Join(root, "apps", "web", "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"@acme/ui": "workspace:*"`)

	out, err = run(t, "add-dep", source, "@acme/ui")
	require.NoError(t, err)
	assert.Contains(t, out, "already depends on @acme/ui")
}

func TestImportsCommand(t *testing.T) {
	root := newWorkspace(t)
	source := filepath.Join(root, "apps", "web", "src", "page.tsx")
	writeFile(t, source, "import { Button } from '@acme/ui'\nimport React from 'react'\n")

	out, err := run(t, "imports", source, "--scope", "@acme")
	require.NoError(t, err)
	assert.Contains(t, out, "missing @acme/ui")
	assert.NotContains(t, out, "react")

	_, err = run(t, "imports", source, "--scope", "@acme", "--fix")
	require.NoError(t, err)

	out, err = run(t, "imports", source, "--scope", "@acme")
	require.NoError(t, err)
	assert.Contains(t, out, "all imports declared")
}

func TestImportsCommandWithoutScope(t *testing.T) {
	root := newWorkspace(t)
	source := filepath.Join(root, "apps", "web", "src", "page.tsx")
	writeFile(t, source, "import React from 'react'\n"+
		"import { Button } from '@acme/ui'\n"+
		"import { routes } from '@acme/web/routes'\n")

	out, err := run(t, "imports", source)
	require.NoError(t, err)
	assert.Contains(t, out, "missing @acme/ui")
	assert.NotContains(t, out, "react")
	assert.NotContains(t, out, "@acme/web")

	out, err = run(t, "imports", source, "--fix")
	require.NoError(t, err)
	assert.Contains(t, out, "added @acme/ui")

	data, err := os.ReadFile(filepath.Join(root, "apps", "web", "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"@acme/ui": "workspace:*"`)
	assert.NotContains(t, string(data), "react")
	assert.NotContains(t, string(data), `"@acme/web": "workspace:*"`)
}

func TestImportsCommandWithoutScopeOrWorkspace(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "solo"}`)
	source := filepath.Join(dir, "index.ts")
	writeFile(t, source, "import React from 'react'\n")

	_, err := run(t, "imports", source, "--fix")
	assert.ErrorContains(t, err, "--scope")

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "react")
}

func TestTreeCommandRemoteUsesServerRoot(t *testing.T) {
	root := newWorkspace(t)
	socketPath := startServer(t, root)

	out, err := run(t, "tree", t.TempDir(), "--socket", socketPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, root+"\n"), out)
	assert.Contains(t, out, "@acme/ui packages/ui")
	assert.NotContains(t, out, "..")

	out, err = run(t, "list", t.TempDir(), "--socket", socketPath)
	require.NoError(t, err)
	assert.Contains(t, out, "packages/billing-api")
	assert.NotContains(t, out, "..")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wslens dev")
}
