package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeWorkspace(t *testing.T, root string, patterns ...string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("packages:\n")
	for _, p := range patterns {
		fmt.Fprintf(&b, "  - %q\n", p)
	}
	writeFile(t, filepath.Join(root, DefaultWorkspaceFile), b.String())
}

func writePackage(t *testing.T, root, rel, name string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel), "package.json")
	writeFile(t, path, fmt.Sprintf(`{"name": %q, "version": "0.0.0"}`, name))
	return path
}

func manifestAt(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel), "package.json")
}

func names(nodes []PackageNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}
