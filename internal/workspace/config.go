package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultWorkspaceFile = "pnpm-workspace.yaml"

// WorkspaceFile is the decoded workspace definition. Packages is a pointer so
// a missing field can be told apart from an empty list.
type WorkspaceFile struct {
	Packages *[]string `yaml:"packages"`
}

// Patterns is the normalized content of a workspace definition.
type Patterns struct {
	Include []string
	Exclude []string
}

// LoadConfig reads the default workspace file under rootDir and returns its
// package globs in file order.
func LoadConfig(rootDir string) ([]string, error) {
	p, err := LoadPatterns(rootDir, DefaultWorkspaceFile)
	if err != nil {
		return nil, err
	}
	return p.Include, nil
}

// FindRoot returns the nearest directory at or above start that holds
// fileName.
func FindRoot(start, fileName string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, fileName)); err == nil && !info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func LoadPatterns(rootDir, fileName string) (Patterns, error) {
	path := filepath.Join(rootDir, fileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Patterns{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Patterns{}, &ConfigParseError{Path: path, Err: err}
	}

	var wf WorkspaceFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return Patterns{}, &ConfigParseError{Path: path, Err: err}
	}

	if wf.Packages == nil {
		return Patterns{}, &ConfigParseError{Path: path, Err: errors.New("missing packages field")}
	}

	return normalizePatterns(*wf.Packages), nil
}

func normalizePatterns(raw []string) Patterns {
	var p Patterns
	for _, entry := range raw {
		negated := false
		pattern := strings.TrimSpace(entry)
		if strings.HasPrefix(pattern, "!") {
			negated = true
			pattern = strings.TrimSpace(pattern[1:])
		}

		pattern = filepath.ToSlash(pattern)
		for strings.HasPrefix(pattern, "./") {
			pattern = pattern[2:]
		}
		pattern = strings.TrimRight(pattern, "/")
		if pattern == "" || pattern == "." {
			continue
		}

		if negated {
			p.Exclude = append(p.Exclude, pattern)
		} else {
			p.Include = append(p.Include, pattern)
		}
	}
	return p
}
