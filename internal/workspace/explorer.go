package workspace

import (
	"context"
	"path/filepath"
	"time"

	"github.com/alucardeht/workspace-lens/internal/logger"
	"github.com/alucardeht/workspace-lens/internal/manifest"
)

var log = logger.ForComponent("workspace")

type Options struct {
	WorkspaceFile string
	Discover      DiscoverOptions
	Nesting       NestingPolicy
	Reader        ManifestReader
}

func DefaultOptions() Options {
	return Options{
		WorkspaceFile: DefaultWorkspaceFile,
		Discover:      DefaultDiscoverOptions(),
		Nesting:       NestingFirstWins,
		Reader:        manifest.Read,
	}
}

// Scan runs one complete discovery pass: workspace file, pattern expansion,
// nesting filter and tree construction. A config error aborts the pass with
// an empty tree; pattern failures still return the packages that were found.
func Scan(ctx context.Context, rootDir string, opts Options) ([]PackageNode, error) {
	start := time.Now()

	patterns, err := LoadPatterns(rootDir, opts.WorkspaceFile)
	if err != nil {
		log.Error("failed to load workspace config", "root", rootDir, "error", err)
		return nil, err
	}

	candidates, discoverErr := DiscoverAll(ctx, rootDir, patterns, opts.Discover)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	filtered := ApplyNesting(opts.Nesting, candidates, rootDir)
	tree := BuildTree(filtered, rootDir, opts.Reader)

	log.Info("workspace scanned",
		"root", rootDir,
		"patterns", len(patterns.Include),
		"candidates", len(candidates),
		"packages", len(filtered),
		"duration", time.Since(start))

	return tree, discoverErr
}

// Explorer is the read surface editors use: fresh and cached package lists
// plus tree navigation for one workspace root.
type Explorer struct {
	root  string
	opts  Options
	cache *Cache
}

func NewExplorer(root string, opts Options) (*Explorer, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	e := &Explorer{
		root: absRoot,
		opts: opts,
	}
	e.cache = NewCache(e.load)
	return e, nil
}

func (e *Explorer) load(ctx context.Context) (Snapshot, error) {
	tree, err := Scan(ctx, e.root, e.opts)
	return NewSnapshot(tree), err
}

func (e *Explorer) Root() string {
	return e.root
}

func (e *Explorer) Cache() *Cache {
	return e.cache
}

// Tree returns freshly scanned root-level nodes.
func (e *Explorer) Tree(ctx context.Context) ([]PackageNode, error) {
	snap, err := e.cache.Fresh(ctx)
	return snap.Tree, err
}

// Packages returns every package in the workspace from a fresh pass.
func (e *Explorer) Packages(ctx context.Context) ([]PackageNode, error) {
	snap, err := e.cache.Fresh(ctx)
	return snap.Packages, err
}

// CachedPackages never blocks; see Cache.Cached.
func (e *Explorer) CachedPackages() []PackageNode {
	return e.cache.Cached().Packages
}

// Children returns the root nodes when node is nil, otherwise node's own
// children.
func (e *Explorer) Children(ctx context.Context, node *PackageNode) ([]PackageNode, error) {
	if node != nil {
		return node.Children, nil
	}
	return e.Tree(ctx)
}

// ChildrenOf resolves path against the latest snapshot and returns that
// node's children. An empty path returns the roots.
func (e *Explorer) ChildrenOf(ctx context.Context, path string) ([]PackageNode, bool, error) {
	if path == "" {
		tree, err := e.Tree(ctx)
		return tree, true, err
	}

	snap, loaded := e.cache.Peek()
	if !loaded {
		var err error
		if snap, err = e.cache.Fresh(ctx); err != nil && IsConfigError(err) {
			return nil, false, err
		}
	}

	node, ok := FindByPath(snap.Tree, filepath.Clean(path))
	if !ok {
		return nil, false, nil
	}
	return node.Children, true, nil
}

func (e *Explorer) FilterByDomain(ctx context.Context, domain string) ([]PackageNode, error) {
	pkgs, err := e.Packages(ctx)
	return FilterByDomain(pkgs, domain), err
}

func (e *Explorer) Close() {
	e.cache.Close()
}

// Status summarizes the cache for health reporting without starting a pass.
func (e *Explorer) Status() (packages int, loaded bool, lastErr error) {
	snap, loaded := e.cache.Peek()
	return len(snap.Packages), loaded, e.cache.LastError()
}
