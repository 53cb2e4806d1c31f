package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alucardeht/workspace-lens/internal/config"
	"github.com/alucardeht/workspace-lens/internal/daemon"
	"github.com/alucardeht/workspace-lens/internal/logger"
	"github.com/alucardeht/workspace-lens/internal/rpc"
	"github.com/alucardeht/workspace-lens/internal/tools"
	"github.com/alucardeht/workspace-lens/internal/tools/deps"
	"github.com/alucardeht/workspace-lens/internal/tools/packages"
	"github.com/alucardeht/workspace-lens/internal/watcher"
	"github.com/alucardeht/workspace-lens/internal/workspace"
)

var log = logger.ForComponent("cli")

var (
	serveSocket string
	serveStdio  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [root]",
	Short: "Serve the package graph over JSON-RPC",
	Long: `Serve the workspace package graph to editors over JSON-RPC.

By default the server listens on a unix socket (socket_path in the config,
or --socket). With --stdio it serves a single client on stdin and stdout.
A file watcher keeps the package cache current while the server runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		if serveSocket != "" {
			cfg.SocketPath = serveSocket
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveSocket, "socket", "", "unix socket path (overrides socket_path)")
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "serve one client over stdin/stdout")
}

func serve(ctx context.Context, cfg *config.Config) error {
	explorer, err := workspace.NewExplorer(cfg.Root, cfg.WorkspaceOptions())
	if err != nil {
		return err
	}
	defer explorer.Close()

	registry, err := newRegistry(cfg, explorer)
	if err != nil {
		return err
	}

	if cfg.Watcher.Enabled {
		w, err := startWatcher(ctx, cfg, explorer.Cache())
		if err != nil {
			log.Warn("file watcher unavailable, cache refreshes on request only", "error", err)
		} else {
			defer w.Stop()
		}
	}

	// Warm the cache so the first cached read has something to return.
	explorer.Cache().Refresh()

	server := rpc.NewServer(registry)
	if serveStdio {
		return server.ServeStdio(ctx)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}

	log.Info("serving workspace", "root", cfg.Root, "socket", cfg.SocketPath)
	return daemon.NewDaemon(cfg.SocketPath, server).Serve(ctx)
}

func newRegistry(cfg *config.Config, explorer *workspace.Explorer) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	if err := registry.Register(&tools.PingTool{}); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewHealthTool(explorer)); err != nil {
		return nil, err
	}
	if err := registry.RegisterAll(packages.GetTools(explorer)); err != nil {
		return nil, fmt.Errorf("packages: %w", err)
	}
	if err := registry.RegisterAll(deps.GetTools(cfg.Scope)); err != nil {
		return nil, fmt.Errorf("deps: %w", err)
	}

	return registry, nil
}

func startWatcher(ctx context.Context, cfg *config.Config, target watcher.Invalidator) (*watcher.Watcher, error) {
	classifier := watcher.NewEventClassifier(cfg.Discovery.WorkspaceFile, cfg.Discovery.ManifestFile)

	w, err := watcher.New(cfg.Watcher, classifier, target)
	if err != nil {
		return nil, err
	}
	if err := w.AddRoot(cfg.Root); err != nil {
		w.Stop()
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
