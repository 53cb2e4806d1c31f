package packages

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/workspace-lens/internal/tools"
	"github.com/alucardeht/workspace-lens/internal/workspace"
	"github.com/alucardeht/workspace-lens/pkg/protocol"
)

type PackagesTool struct {
	readOnly
	explorer *workspace.Explorer
}

func (t *PackagesTool) Name() string {
	return protocol.MethodPackages
}

func (t *PackagesTool) Title() string {
	return "List packages"
}

func (t *PackagesTool) Description() string {
	return "Run a fresh discovery pass and return every workspace package in tree order"
}

func (t *PackagesTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *PackagesTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	pkgs, err := t.explorer.Packages(ctx)
	warning, err := warningFor(err)
	if err != nil {
		return nil, err
	}
	return protocol.PackagesResult{Root: t.explorer.Root(), Packages: nonNil(pkgs), Warning: warning}, nil
}

type CachedPackagesTool struct {
	readOnly
	explorer *workspace.Explorer
}

func (t *CachedPackagesTool) Name() string {
	return protocol.MethodCachedPackages
}

func (t *CachedPackagesTool) Title() string {
	return "List cached packages"
}

func (t *CachedPackagesTool) Description() string {
	return "Return the last discovered packages without waiting; empty until the first pass completes"
}

func (t *CachedPackagesTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *CachedPackagesTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return protocol.PackagesResult{Root: t.explorer.Root(), Packages: nonNil(t.explorer.CachedPackages())}, nil
}

type FilterTool struct {
	readOnly
	explorer *workspace.Explorer
}

func (t *FilterTool) Name() string {
	return protocol.MethodFilter
}

func (t *FilterTool) Title() string {
	return "Filter packages by domain"
}

func (t *FilterTool) Description() string {
	return "Return packages whose name segments or scope match the domain"
}

func (t *FilterTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"domain": {
				"type": "string",
				"description": "Name segment such as \"billing\", or a scope such as \"@acme\""
			}
		},
		"required": ["domain"]
	}`)
}

func (t *FilterTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req protocol.FilterParams
	if err := tools.DecodeParams(input, &req); err != nil {
		return nil, err
	}
	if req.Domain == "" {
		return nil, tools.NewInvalidParamsError("domain is required")
	}

	pkgs, err := t.explorer.FilterByDomain(ctx, req.Domain)
	warning, err := warningFor(err)
	if err != nil {
		return nil, err
	}
	return protocol.PackagesResult{Root: t.explorer.Root(), Packages: nonNil(pkgs), Warning: warning}, nil
}

type RefreshTool struct {
	explorer *workspace.Explorer
}

func (t *RefreshTool) Name() string {
	return protocol.MethodRefresh
}

func (t *RefreshTool) Title() string {
	return "Refresh package cache"
}

func (t *RefreshTool) Annotations() map[string]bool {
	return tools.BackgroundAnnotations()
}

func (t *RefreshTool) Description() string {
	return "Mark the package cache stale and start a background discovery pass"
}

func (t *RefreshTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *RefreshTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	cache := t.explorer.Cache()
	cache.Invalidate()
	cache.Refresh()
	return protocol.RefreshResult{Scheduled: true}, nil
}
