package deps

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/alucardeht/workspace-lens/internal/manifest"
	"github.com/alucardeht/workspace-lens/internal/tools"
	"github.com/alucardeht/workspace-lens/internal/workspace"
	"github.com/alucardeht/workspace-lens/pkg/protocol"
)

// GetTools returns the manifest and import tools. scope is the default
// import scope used when a call does not name one.
func GetTools(scope string) []tools.Tool {
	return []tools.Tool{
		&FindManifestTool{},
		&AddDependencyTool{},
		&MatchImportTool{scope: scope},
	}
}

type FindManifestTool struct{}

func (t *FindManifestTool) Name() string {
	return protocol.MethodFindManifest
}

func (t *FindManifestTool) Title() string {
	return "Find nearest manifest"
}

func (t *FindManifestTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *FindManifestTool) Description() string {
	return "Walk up from a file to the closest package.json"
}

func (t *FindManifestTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file": {
				"type": "string",
				"description": "Absolute path of a source file"
			}
		},
		"required": ["file"]
	}`)
}

func (t *FindManifestTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req protocol.FindManifestParams
	if err := tools.DecodeParams(input, &req); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(req.File) {
		return nil, tools.NewInvalidParamsError("file must be an absolute path")
	}

	path, found := manifest.FindNearest(req.File)
	return protocol.FindManifestResult{Manifest: path, Found: found}, nil
}

type AddDependencyTool struct{}

func (t *AddDependencyTool) Name() string {
	return protocol.MethodAddDependency
}

func (t *AddDependencyTool) Title() string {
	return "Add workspace dependency"
}

func (t *AddDependencyTool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *AddDependencyTool) Description() string {
	return "Declare a package as a workspace:* dependency in a manifest unless it is already listed"
}

func (t *AddDependencyTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"manifest": {
				"type": "string",
				"description": "Absolute path of the package.json to edit"
			},
			"package": {
				"type": "string",
				"description": "Package name to add"
			}
		},
		"required": ["manifest", "package"]
	}`)
}

func (t *AddDependencyTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req protocol.AddDependencyParams
	if err := tools.DecodeParams(input, &req); err != nil {
		return nil, err
	}
	if req.Manifest == "" || req.Package == "" {
		return nil, tools.NewInvalidParamsError("manifest and package are required")
	}

	added, err := manifest.AddDependency(req.Manifest, req.Package)
	if err != nil {
		var parseErr *manifest.ParseError
		if errors.As(err, &parseErr) || errors.Is(err, fs.ErrNotExist) {
			return nil, tools.NewInvalidParamsError(err.Error())
		}
		return nil, err
	}
	return protocol.AddDependencyResult{Added: added}, nil
}

type MatchImportTool struct {
	scope string
}

func (t *MatchImportTool) Name() string {
	return protocol.MethodMatchImport
}

func (t *MatchImportTool) Title() string {
	return "Match import"
}

func (t *MatchImportTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *MatchImportTool) Description() string {
	return "Extract the package imported on a source line, optionally restricted to a scope"
}

func (t *MatchImportTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"line": {
				"type": "string",
				"description": "One line of JavaScript or TypeScript source"
			},
			"scope": {
				"type": "string",
				"description": "Package scope such as \"@acme\" (optional, defaults to the configured scope)"
			}
		},
		"required": ["line"]
	}`)
}

func (t *MatchImportTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req protocol.MatchImportParams
	if err := tools.DecodeParams(input, &req); err != nil {
		return nil, err
	}

	scope := req.Scope
	if scope == "" {
		scope = t.scope
	}

	pkg, ok := workspace.MatchImport(req.Line, scope)
	return protocol.MatchImportResult{Package: pkg, Matched: ok}, nil
}
