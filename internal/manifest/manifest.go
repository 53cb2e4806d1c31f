package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	FileName = "package.json"

	// WorkspaceVersion is the version constraint pnpm resolves to the local
	// workspace copy of a package.
	WorkspaceVersion = "workspace:*"
)

var ErrNameMissing = errors.New("manifest has no name")

// ParseError reports a manifest that could not be read or decoded. Callers
// building the package tree skip the manifest and keep going.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version,omitempty"`
	Private      bool              `json:"private,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type rawManifest struct {
	Name         *string           `json:"name"`
	Version      string            `json:"version"`
	Private      bool              `json:"private"`
	Dependencies map[string]string `json:"dependencies"`
}

func Parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if raw.Name == nil || *raw.Name == "" {
		return nil, ErrNameMissing
	}

	return &Manifest{
		Name:         *raw.Name,
		Version:      raw.Version,
		Private:      raw.Private,
		Dependencies: raw.Dependencies,
	}, nil
}

// Read loads the manifest at path. Every failure, including a missing file,
// comes back as *ParseError.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	m, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return m, nil
}

// FindNearest returns the closest package.json at or above the directory
// containing filePath.
func FindNearest(filePath string) (string, bool) {
	dir := filepath.Dir(filePath)
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// AddDependency records pkg as a workspace dependency in the manifest at path.
// It returns false without touching the file when pkg is already listed.
func AddDependency(path, pkg string) (bool, error) {
	if pkg == "" {
		return false, fmt.Errorf("package name is required")
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat manifest: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read manifest: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return false, &ParseError{Path: path, Err: errors.New("invalid JSON")}
	}

	key := "dependencies." + gjson.Escape(pkg)
	if gjson.GetBytes(data, key).Exists() {
		return false, nil
	}

	updated, err := sjson.SetBytes(data, key, WorkspaceVersion)
	if err != nil {
		return false, fmt.Errorf("set dependency: %w", err)
	}

	out := pretty.PrettyOptions(updated, &pretty.Options{Indent: "  "})
	if !bytes.HasSuffix(data, []byte("\n")) {
		out = bytes.TrimRight(out, "\n")
	}

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write manifest: %w", err)
	}

	return true, nil
}
