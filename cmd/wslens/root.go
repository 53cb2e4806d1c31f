package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alucardeht/workspace-lens/internal/config"
	"github.com/alucardeht/workspace-lens/internal/logger"
)

var (
	// Version is set via -ldflags.
	Version = "dev"
	// Commit is set via -ldflags.
	Commit = "unknown"

	verbose bool
	noColor bool

	rootCmd = &cobra.Command{
		Use:   "wslens",
		Short: "Inspect the package graph of a pnpm workspace",
		Long: `wslens reads pnpm-workspace.yaml, discovers every package.json the
workspace patterns select and arranges the packages into a directory tree.

It can print the tree, list packages by domain, add workspace dependencies,
or serve the package graph to editors over JSON-RPC.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addDepCmd)
	rootCmd.AddCommand(importsCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		return err
	}
	return nil
}

// loadConfig resolves the workspace root from args, loads its configuration
// and initializes logging.
func loadConfig(args []string) (*config.Config, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	logger.Init(logger.Config{
		Level:  level,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})

	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wslens %s (commit: %s)\n", Version, Commit)
	},
}
