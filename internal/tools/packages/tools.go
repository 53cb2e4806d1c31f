package packages

import (
	"context"
	"errors"

	"github.com/alucardeht/workspace-lens/internal/tools"
	"github.com/alucardeht/workspace-lens/internal/workspace"
)

func GetTools(explorer *workspace.Explorer) []tools.Tool {
	return []tools.Tool{
		&PackagesTool{explorer: explorer},
		&CachedPackagesTool{explorer: explorer},
		&TreeTool{explorer: explorer},
		&ChildrenTool{explorer: explorer},
		&FilterTool{explorer: explorer},
		&RefreshTool{explorer: explorer},
	}
}

// warningFor splits a pass error into the part the caller must fail on and
// the part that only means some packages were skipped.
func warningFor(err error) (string, error) {
	switch {
	case err == nil:
		return "", nil
	case workspace.IsConfigError(err):
		return "", tools.NewConfigError(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "", err
	default:
		return err.Error(), nil
	}
}

type readOnly struct{}

func (readOnly) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func nonNil(nodes []workspace.PackageNode) []workspace.PackageNode {
	if nodes == nil {
		return []workspace.PackageNode{}
	}
	return nodes
}
