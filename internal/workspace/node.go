package workspace

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Kind string

const (
	KindDirectory Kind = "directory"
	KindPackage   Kind = "package"
)

// PackageNode is one entry in the workspace hierarchy. Package nodes can
// still carry children when another workspace package lives below them.
type PackageNode struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Kind     Kind          `json:"type"`
	Children []PackageNode `json:"children,omitempty"`
}

func (n PackageNode) IsPackage() bool {
	return n.Kind == KindPackage
}

// SortNodes orders siblings: directories first, then by collated name.
func SortNodes(nodes []PackageNode) {
	c := collate.New(language.Und)
	sort.SliceStable(nodes, func(i, j int) bool {
		return lessNode(c, nodes[i], nodes[j])
	})
}

func lessNode(c *collate.Collator, a, b PackageNode) bool {
	if a.Kind != b.Kind {
		return a.Kind == KindDirectory
	}
	if cmp := c.CompareString(a.Name, b.Name); cmp != 0 {
		return cmp < 0
	}
	return a.Name < b.Name
}

// Flatten returns every package node in depth-first pre-order. Directory
// nodes are walked but not returned.
func Flatten(nodes []PackageNode) []PackageNode {
	var out []PackageNode
	var walk func([]PackageNode)
	walk = func(level []PackageNode) {
		for _, n := range level {
			if n.IsPackage() {
				out = append(out, n)
			}
			if len(n.Children) > 0 {
				walk(n.Children)
			}
		}
	}
	walk(nodes)
	return out
}

// FindByPath looks up the node whose Path equals path.
func FindByPath(nodes []PackageNode, path string) (PackageNode, bool) {
	for _, n := range nodes {
		if n.Path == path {
			return n, true
		}
		if strings.HasPrefix(path, n.Path) && len(n.Children) > 0 {
			if found, ok := FindByPath(n.Children, path); ok {
				return found, true
			}
		}
	}
	return PackageNode{}, false
}

// Equal reports whether two trees have the same names, kinds, paths and
// child ordering.
func Equal(a, b []PackageNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Kind != b[i].Kind || a[i].Path != b[i].Path {
			return false
		}
		if !Equal(a[i].Children, b[i].Children) {
			return false
		}
	}
	return true
}
