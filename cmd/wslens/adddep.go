package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alucardeht/workspace-lens/internal/manifest"
)

var addDepCmd = &cobra.Command{
	Use:   "add-dep <file> <package>",
	Short: "Add a workspace:* dependency to the manifest owning a file",
	Long: `Add <package> as a "workspace:*" dependency to the package.json closest to
<file>. <file> may be the manifest itself or any file inside the package.
Existing entries are left untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveManifest(args[0])
		if err != nil {
			return err
		}

		added, err := manifest.AddDependency(path, args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !added {
			fmt.Fprintf(out, "%s already depends on %s\n", relToCwd(path), packageColor.Sprint(args[1]))
			return nil
		}
		fmt.Fprintf(out, "added %s to %s\n", packageColor.Sprint(args[1]), relToCwd(path))
		fmt.Fprintln(out, pathColor.Sprint("run pnpm install to link it"))
		return nil
	},
}

func resolveManifest(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	if filepath.Base(abs) == manifest.FileName {
		return abs, nil
	}

	path, ok := manifest.FindNearest(abs)
	if !ok {
		return "", fmt.Errorf("no %s found above %s", manifest.FileName, file)
	}
	return path, nil
}

func relToCwd(path string) string {
	abs, err := filepath.Abs(".")
	if err != nil {
		return path
	}
	return relPath(abs, path)
}
