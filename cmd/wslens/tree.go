package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/alucardeht/workspace-lens/internal/config"
	"github.com/alucardeht/workspace-lens/internal/daemon"
	"github.com/alucardeht/workspace-lens/internal/workspace"
	"github.com/alucardeht/workspace-lens/pkg/protocol"
)

var (
	remoteSocket string
	jsonOutput   bool
)

var treeCmd = &cobra.Command{
	Use:   "tree [root]",
	Short: "Print the workspace package tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}

		tree, err := fetchTree(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if tree.Warning != "" {
			warn(cmd.ErrOrStderr(), "%s", tree.Warning)
		}

		if jsonOutput {
			return writeJSON(cmd, tree.Nodes)
		}
		if len(tree.Nodes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), pathColor.Sprint("no packages found"))
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), dirColor.Sprint(tree.Root))
		renderTree(cmd.OutOrStdout(), tree.Root, tree.Nodes)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{treeCmd, listCmd} {
		cmd.Flags().StringVar(&remoteSocket, "socket", "", "query a running server on this socket instead of scanning")
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
	}
}

// fetchTree scans locally, or asks a running server when --socket is set.
// Paths in the result are under its Root, which for a server is the server's
// own workspace. A non-empty Warning means the tree is partial.
func fetchTree(ctx context.Context, cfg *config.Config) (protocol.TreeResult, error) {
	if remoteSocket != "" {
		var result protocol.TreeResult
		if err := callServer(ctx, protocol.MethodTree, nil, &result); err != nil {
			return protocol.TreeResult{}, err
		}
		if result.Root == "" {
			result.Root = cfg.Root
		}
		return result, nil
	}

	result := protocol.TreeResult{Root: cfg.Root}
	nodes, err := workspace.Scan(ctx, cfg.Root, cfg.WorkspaceOptions())
	if err != nil && workspace.IsConfigError(err) {
		return protocol.TreeResult{}, err
	}
	if err != nil {
		result.Warning = err.Error()
	}
	result.Nodes = nodes
	return result, nil
}

func callServer(ctx context.Context, method string, params, result interface{}) error {
	client, err := daemon.Dial(ctx, remoteSocket)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Call(ctx, method, params, result)
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	out := pretty.Pretty(data)
	if !color.NoColor {
		out = pretty.Color(out, nil)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
