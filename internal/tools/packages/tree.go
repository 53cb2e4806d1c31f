package packages

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/workspace-lens/internal/tools"
	"github.com/alucardeht/workspace-lens/internal/workspace"
	"github.com/alucardeht/workspace-lens/pkg/protocol"
)

type TreeTool struct {
	readOnly
	explorer *workspace.Explorer
}

func (t *TreeTool) Name() string {
	return protocol.MethodTree
}

func (t *TreeTool) Title() string {
	return "Package tree"
}

func (t *TreeTool) Description() string {
	return "Run a fresh discovery pass and return the directory tree of packages"
}

func (t *TreeTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *TreeTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	nodes, err := t.explorer.Tree(ctx)
	warning, err := warningFor(err)
	if err != nil {
		return nil, err
	}
	return protocol.TreeResult{Root: t.explorer.Root(), Nodes: nonNil(nodes), Warning: warning}, nil
}

type ChildrenTool struct {
	readOnly
	explorer *workspace.Explorer
}

func (t *ChildrenTool) Name() string {
	return protocol.MethodChildren
}

func (t *ChildrenTool) Title() string {
	return "Node children"
}

func (t *ChildrenTool) Description() string {
	return "Return the children of the node at path, or the root nodes when path is empty"
}

func (t *ChildrenTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Absolute path of a directory or package node (optional)"
			}
		}
	}`)
}

func (t *ChildrenTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req protocol.ChildrenParams
	if err := tools.DecodeParams(input, &req); err != nil {
		return nil, err
	}

	children, found, err := t.explorer.ChildrenOf(ctx, req.Path)
	if _, err := warningFor(err); err != nil {
		return nil, err
	}
	return protocol.ChildrenResult{Children: nonNil(children), Found: found}, nil
}
