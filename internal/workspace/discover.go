package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourcegraph/conc/iter"

	"github.com/alucardeht/workspace-lens/internal/manifest"
)

type DiscoverOptions struct {
	ManifestFile string
	// ExcludePatterns are matched against slash-separated paths relative to
	// the workspace root. Directories whose contents they exclude are pruned.
	ExcludePatterns []string
	// ExcludeDirs holds negated workspace patterns; a package directory that
	// matches one is dropped.
	ExcludeDirs []string
	Workers     int
}

func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		ManifestFile:    manifest.FileName,
		ExcludePatterns: []string{"**/node_modules/**"},
		Workers:         4,
	}
}

// Discover expands one workspace pattern into absolute manifest paths. A
// directory's own manifest is reported before anything below it, so parents
// precede nested packages in the result.
func Discover(ctx context.Context, rootDir, pattern string, opts DiscoverOptions) ([]string, error) {
	if opts.ManifestFile == "" {
		opts.ManifestFile = manifest.FileName
	}

	full := pattern + "/**/" + opts.ManifestFile
	if !doublestar.ValidatePattern(full) {
		return nil, &PatternError{Pattern: pattern, Err: doublestar.ErrBadPattern}
	}

	base, _ := doublestar.SplitPattern(full)
	fsys := os.DirFS(rootDir)

	d := &discoverer{
		ctx:     ctx,
		fsys:    fsys,
		full:    full,
		opts:    opts,
		rootDir: rootDir,
		linked:  make(map[string]bool),
	}

	if err := d.walk(base); err != nil {
		if errors.Is(err, fs.ErrNotExist) && base != "." {
			log.Debug("pattern base does not exist", "pattern", pattern, "base", base)
			return nil, nil
		}
		return nil, &PatternError{Pattern: pattern, Err: err}
	}

	return d.found, nil
}

type discoverer struct {
	ctx     context.Context
	fsys    fs.FS
	full    string
	opts    DiscoverOptions
	rootDir string
	found   []string
	// linked holds the resolved targets of directory symlinks already walked.
	linked  map[string]bool
}

func (d *discoverer) walk(dir string) error {
	if err := d.ctx.Err(); err != nil {
		return err
	}

	entries, err := fs.ReadDir(d.fsys, dir)
	if err != nil {
		return err
	}

	var subdirs []string
	for _, entry := range entries {
		if entry.Type()&fs.ModeSymlink != 0 && d.followLink(dir, entry.Name()) {
			subdirs = append(subdirs, entry.Name())
			continue
		}
		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
			continue
		}
		if entry.Name() != d.opts.ManifestFile {
			continue
		}

		rel := path.Join(dir, entry.Name())
		if d.accept(rel) {
			d.found = append(d.found, filepath.Join(d.rootDir, filepath.FromSlash(rel)))
		}
	}

	sort.Strings(subdirs)
	for _, name := range subdirs {
		child := path.Join(dir, name)
		if d.pruned(child) {
			continue
		}
		if err := d.walk(child); err != nil {
			return err
		}
	}

	return nil
}

// followLink reports whether the symlink name in dir leads to a directory
// that should be walked. Links back to an ancestor and targets already
// reached through another link are skipped, which keeps cycles finite.
func (d *discoverer) followLink(dir, name string) bool {
	rel := path.Join(dir, name)
	if d.pruned(rel) {
		return false
	}
	info, err := fs.Stat(d.fsys, rel)
	if err != nil || !info.IsDir() {
		return false
	}

	target, err := filepath.EvalSymlinks(d.abs(rel))
	if err != nil {
		return false
	}
	parent, err := filepath.EvalSymlinks(d.abs(dir))
	if err != nil {
		return false
	}

	if parent == target || strings.HasPrefix(parent, target+string(filepath.Separator)) {
		log.Debug("skipping symlink to ancestor", "link", rel, "target", target)
		return false
	}
	if d.linked[target] {
		return false
	}
	d.linked[target] = true
	return true
}

func (d *discoverer) abs(rel string) string {
	return filepath.Join(d.rootDir, filepath.FromSlash(rel))
}

func (d *discoverer) accept(rel string) bool {
	// The workspace root manifest is never a member package.
	if rel == d.opts.ManifestFile {
		return false
	}

	if ok, _ := doublestar.Match(d.full, rel); !ok {
		return false
	}

	for _, ex := range d.opts.ExcludePatterns {
		if ok, _ := doublestar.Match(ex, rel); ok {
			return false
		}
	}

	pkgDir := path.Dir(rel)
	for _, ex := range d.opts.ExcludeDirs {
		if ok, _ := doublestar.Match(ex, pkgDir); ok {
			return false
		}
	}

	return true
}

// pruned reports whether a manifest directly inside dir would already be
// excluded, in which case nothing below dir can be accepted either.
func (d *discoverer) pruned(dir string) bool {
	candidate := path.Join(dir, d.opts.ManifestFile)
	for _, ex := range d.opts.ExcludePatterns {
		if ok, _ := doublestar.Match(ex, candidate); ok {
			return true
		}
	}
	return false
}

type patternResult struct {
	paths []string
	err   error
}

// DiscoverAll expands every include pattern independently and concatenates
// the results in pattern order. Failed patterns are logged and reported in
// the returned error; the paths from the others are still returned.
func DiscoverAll(ctx context.Context, rootDir string, patterns Patterns, opts DiscoverOptions) ([]string, error) {
	opts.ExcludeDirs = append(append([]string(nil), opts.ExcludeDirs...), patterns.Exclude...)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	mapper := iter.Mapper[string, patternResult]{MaxGoroutines: workers}
	results := mapper.Map(patterns.Include, func(pattern *string) patternResult {
		paths, err := Discover(ctx, rootDir, *pattern, opts)
		return patternResult{paths: paths, err: err}
	})

	var all []string
	var errs []error
	for i, r := range results {
		if r.err != nil {
			log.Warn("pattern discovery failed", "pattern", patterns.Include[i], "error", r.err)
			errs = append(errs, r.err)
			continue
		}
		log.Debug("pattern discovered", "pattern", patterns.Include[i], "manifests", len(r.paths))
		all = append(all, r.paths...)
	}

	if len(errs) > 0 {
		return all, fmt.Errorf("discovery incomplete: %w", errors.Join(errs...))
	}
	return all, nil
}
