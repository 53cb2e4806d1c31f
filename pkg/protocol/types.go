// Package protocol holds the params and results exchanged over JSON-RPC.
package protocol

import (
	"encoding/json"

	"github.com/alucardeht/workspace-lens/internal/workspace"
)

const (
	MethodPackages       = "workspace/packages"
	MethodCachedPackages = "workspace/cachedPackages"
	MethodTree           = "workspace/tree"
	MethodChildren       = "workspace/children"
	MethodFilter         = "workspace/filter"
	MethodRefresh        = "workspace/refresh"
	MethodFindManifest   = "manifest/find"
	MethodAddDependency  = "manifest/addDependency"
	MethodMatchImport    = "imports/match"
	MethodListMethods    = "rpc/methods"
)

// PackagesResult carries the server's workspace root so clients can show
// paths relative to it.
type PackagesResult struct {
	Root     string                  `json:"root"`
	Packages []workspace.PackageNode `json:"packages"`
	Warning  string                  `json:"warning,omitempty"`
}

type TreeResult struct {
	Root    string                  `json:"root"`
	Nodes   []workspace.PackageNode `json:"nodes"`
	Warning string                  `json:"warning,omitempty"`
}

type ChildrenParams struct {
	Path string `json:"path,omitempty"`
}

type ChildrenResult struct {
	Children []workspace.PackageNode `json:"children"`
	Found    bool                    `json:"found"`
}

type FilterParams struct {
	Domain string `json:"domain"`
}

type RefreshResult struct {
	Scheduled bool `json:"scheduled"`
}

type FindManifestParams struct {
	File string `json:"file"`
}

type FindManifestResult struct {
	Manifest string `json:"manifest,omitempty"`
	Found    bool   `json:"found"`
}

type AddDependencyParams struct {
	Manifest string `json:"manifest"`
	Package  string `json:"package"`
}

type AddDependencyResult struct {
	Added bool `json:"added"`
}

type MatchImportParams struct {
	Line  string `json:"line"`
	Scope string `json:"scope,omitempty"`
}

type MatchImportResult struct {
	Package string `json:"package,omitempty"`
	Matched bool   `json:"matched"`
}

type MethodInfo struct {
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description"`
	Params      json.RawMessage `json:"params"`
	Annotations map[string]bool `json:"annotations,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    int64  `json:"uptime"`
	Root      string `json:"root,omitempty"`
	Packages  int    `json:"packages"`
	Loaded    bool   `json:"loaded"`
	LastError string `json:"lastError,omitempty"`
}
