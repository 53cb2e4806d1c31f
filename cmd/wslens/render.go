package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/alucardeht/workspace-lens/internal/workspace"
)

var (
	dirColor     = color.New(color.FgBlue, color.Bold)
	packageColor = color.New(color.FgGreen)
	pathColor    = color.New(color.FgHiBlack)
	warnColor    = color.New(color.FgYellow)
)

// renderTree prints nodes with box-drawing guides. Package lines carry the
// package directory relative to root.
func renderTree(w io.Writer, root string, nodes []workspace.PackageNode) {
	renderLevel(w, root, nodes, "")
}

func renderLevel(w io.Writer, root string, nodes []workspace.PackageNode, prefix string) {
	for i, node := range nodes {
		branch, indent := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, indent = "└── ", "    "
		}

		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, nodeLabel(root, node))
		renderLevel(w, root, node.Children, prefix+indent)
	}
}

func nodeLabel(root string, node workspace.PackageNode) string {
	if !node.IsPackage() {
		return dirColor.Sprint(node.Name + "/")
	}
	return packageColor.Sprint(node.Name) + " " + pathColor.Sprint(relPath(root, node.Path))
}

func renderList(w io.Writer, root string, pkgs []workspace.PackageNode) {
	width := 0
	for _, p := range pkgs {
		if len(p.Name) > width {
			width = len(p.Name)
		}
	}

	for _, p := range pkgs {
		fmt.Fprintf(w, "%s  %s\n", packageColor.Sprintf("%-*s", width, p.Name), pathColor.Sprint(relPath(root, p.Path)))
	}
}

func warn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", warnColor.Sprint("Warning:"), fmt.Sprintf(format, args...))
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
