package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alucardeht/workspace-lens/internal/config"
	"github.com/alucardeht/workspace-lens/internal/manifest"
	"github.com/alucardeht/workspace-lens/internal/workspace"
)

var (
	importsScope string
	importsFix   bool
)

var importsCmd = &cobra.Command{
	Use:   "imports <file>",
	Short: "Report workspace imports missing from the owning manifest",
	Long: `Scan a source file for imports of scoped workspace packages and report
the ones its package.json does not declare. With --fix they are added as
"workspace:*" dependencies.

The scope comes from --scope or the "scope" config key. Without one, only
imports naming a package of the enclosing workspace are considered. A file
importing its own package is never reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load(filepath.Dir(file))
		if err != nil {
			return err
		}
		scope := importsScope
		if scope == "" {
			scope = cfg.Scope
		}

		lines, err := readLines(file)
		if err != nil {
			return err
		}

		path, ok := manifest.FindNearest(file)
		if !ok {
			return fmt.Errorf("no %s found above %s", manifest.FileName, args[0])
		}
		m, err := manifest.Read(path)
		if err != nil {
			return err
		}

		var known map[string]bool
		if scope == "" {
			known, err = workspacePackages(cmd.Context(), cfg, file)
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		missing := workspace.WorkspaceImports(workspace.MissingImports(lines, scope, m.Dependencies), m.Name, known)
		if len(missing) == 0 {
			fmt.Fprintln(out, pathColor.Sprint("all imports declared"))
			return nil
		}

		for _, pkg := range missing {
			if !importsFix {
				fmt.Fprintf(out, "%s %s\n", warnColor.Sprint("missing"), packageColor.Sprint(pkg))
				continue
			}
			if _, err := manifest.AddDependency(path, pkg); err != nil {
				return err
			}
			fmt.Fprintf(out, "added %s to %s\n", packageColor.Sprint(pkg), relToCwd(path))
		}
		return nil
	},
}

func init() {
	importsCmd.Flags().StringVar(&importsScope, "scope", "", "package scope to check, e.g. @acme")
	importsCmd.Flags().BoolVar(&importsFix, "fix", false, "add missing dependencies to the manifest")
}

// workspacePackages names every package in the workspace enclosing file.
func workspacePackages(ctx context.Context, cfg *config.Config, file string) (map[string]bool, error) {
	root, ok := workspace.FindRoot(filepath.Dir(file), cfg.Discovery.WorkspaceFile)
	if !ok {
		return nil, fmt.Errorf("no scope set and no %s found above %s: pass --scope", cfg.Discovery.WorkspaceFile, file)
	}

	nodes, err := workspace.Scan(ctx, root, cfg.WorkspaceOptions())
	if err != nil && workspace.IsConfigError(err) {
		return nil, err
	}
	if err != nil {
		log.Warn("workspace scan incomplete", "root", root, "error", err)
	}
	return workspace.PackageNames(nodes), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
