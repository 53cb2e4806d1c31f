package workspace

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/armon/go-radix"
)

type NestingPolicy string

const (
	// NestingFirstWins accepts candidates in input order; a later candidate
	// inside an already accepted package is dropped.
	NestingFirstWins NestingPolicy = "first"
	// NestingShortestWins accepts shallower directories first, so an outer
	// package always shadows the packages nested in it.
	NestingShortestWins NestingPolicy = "shortest"
)

// FilterNested drops manifests whose directory is already accepted or lies
// below an accepted package directory. Acceptance is order dependent.
func FilterNested(candidates []string, rootDir string) []string {
	accepted := radix.New()
	rootKey := dirKey(filepath.Clean(rootDir))

	out := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		dir := filepath.Dir(filepath.Clean(candidate))
		key := dirKey(dir)

		// LongestPrefix on separator-terminated keys only hits whole path
		// segments, so packages/ui never shadows packages/ui-kit.
		if prefix, _, ok := accepted.LongestPrefix(key); ok && strings.HasPrefix(prefix, rootKey) {
			log.Debug("skipping nested package", "manifest", candidate, "within", strings.TrimSuffix(prefix, string(filepath.Separator)))
			continue
		}

		accepted.Insert(key, candidate)
		out = append(out, candidate)
	}

	return out
}

// FilterNestedShortestFirst applies FilterNested after a stable sort by
// directory depth.
func FilterNestedShortestFirst(candidates []string, rootDir string) []string {
	sorted := append([]string(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return depth(sorted[i]) < depth(sorted[j])
	})
	return FilterNested(sorted, rootDir)
}

func ApplyNesting(policy NestingPolicy, candidates []string, rootDir string) []string {
	if policy == NestingShortestWins {
		return FilterNestedShortestFirst(candidates, rootDir)
	}
	return FilterNested(candidates, rootDir)
}

func dirKey(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

func depth(manifestPath string) int {
	return strings.Count(filepath.Clean(manifestPath), string(filepath.Separator))
}
