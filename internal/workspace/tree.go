package workspace

import (
	"path/filepath"
	"strings"

	"github.com/alucardeht/workspace-lens/internal/manifest"
)

// ManifestReader loads the manifest at path. manifest.Read is the default.
type ManifestReader func(path string) (*manifest.Manifest, error)

type arenaNode struct {
	name     string
	path     string
	kind     Kind
	children []int
}

// treeArena indexes nodes by their slash-joined path relative to the root.
// Children are stored as indices so no node points back at its parent.
type treeArena struct {
	nodes []arenaNode
	index map[string]int
	roots []int
}

func newTreeArena() *treeArena {
	return &treeArena{index: make(map[string]int)}
}

func (a *treeArena) insert(rootDir string, segments []string, pkgName string) {
	parent := -1
	cumulative := ""

	for i, segment := range segments {
		if cumulative == "" {
			cumulative = segment
		} else {
			cumulative = cumulative + "/" + segment
		}
		last := i == len(segments)-1

		idx, exists := a.index[cumulative]
		if !exists {
			node := arenaNode{
				name: segment,
				path: filepath.Join(rootDir, filepath.FromSlash(cumulative)),
				kind: KindDirectory,
			}
			if last {
				node.name = pkgName
				node.kind = KindPackage
			}

			idx = len(a.nodes)
			a.nodes = append(a.nodes, node)
			a.index[cumulative] = idx

			if parent < 0 {
				a.roots = append(a.roots, idx)
			} else {
				a.nodes[parent].children = append(a.nodes[parent].children, idx)
			}
		} else if last && a.nodes[idx].kind == KindDirectory {
			// A nested package was seen first; its parent directory turns
			// out to be a package itself.
			a.nodes[idx].name = pkgName
			a.nodes[idx].kind = KindPackage
		}

		parent = idx
	}
}

func (a *treeArena) materialize(indices []int) []PackageNode {
	if len(indices) == 0 {
		return nil
	}

	out := make([]PackageNode, 0, len(indices))
	for _, idx := range indices {
		n := a.nodes[idx]
		out = append(out, PackageNode{
			Name:     n.name,
			Path:     n.path,
			Kind:     n.kind,
			Children: a.materialize(n.children),
		})
	}

	SortNodes(out)
	return out
}

// BuildTree turns filtered manifest paths into the directory/package
// hierarchy. A manifest that cannot be read is logged and skipped.
func BuildTree(manifests []string, rootDir string, read ManifestReader) []PackageNode {
	if read == nil {
		read = manifest.Read
	}

	arena := newTreeArena()
	for _, manifestPath := range manifests {
		m, err := read(manifestPath)
		if err != nil {
			log.Warn("skipping unreadable manifest", "path", manifestPath, "error", err)
			continue
		}

		rel, err := filepath.Rel(rootDir, filepath.Dir(manifestPath))
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			log.Warn("skipping manifest outside workspace", "path", manifestPath, "root", rootDir)
			continue
		}

		arena.insert(rootDir, strings.Split(filepath.ToSlash(rel), "/"), m.Name)
	}

	return arena.materialize(arena.roots)
}
