package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alucardeht/workspace-lens/internal/config"
	"github.com/alucardeht/workspace-lens/internal/workspace"
	"github.com/alucardeht/workspace-lens/pkg/protocol"
)

var listDomain string

var listCmd = &cobra.Command{
	Use:   "list [root]",
	Short: "List workspace packages",
	Long: `List every workspace package in tree order.

With --domain only packages whose name segments contain the domain are
listed: "billing" matches @acme/billing-api and billing-admin. A domain
starting with "@" selects a scope.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}

		list, err := fetchPackages(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if list.Warning != "" {
			warn(cmd.ErrOrStderr(), "%s", list.Warning)
		}

		if jsonOutput {
			return writeJSON(cmd, list.Packages)
		}
		if len(list.Packages) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), pathColor.Sprint("no packages found"))
			return nil
		}
		renderList(cmd.OutOrStdout(), list.Root, list.Packages)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listDomain, "domain", "d", "", "only list packages in this domain")
}

func fetchPackages(ctx context.Context, cfg *config.Config) (protocol.PackagesResult, error) {
	if remoteSocket != "" {
		var result protocol.PackagesResult
		var err error
		if listDomain != "" {
			err = callServer(ctx, protocol.MethodFilter, protocol.FilterParams{Domain: listDomain}, &result)
		} else {
			err = callServer(ctx, protocol.MethodPackages, nil, &result)
		}
		if err != nil {
			return protocol.PackagesResult{}, err
		}
		if result.Root == "" {
			result.Root = cfg.Root
		}
		return result, nil
	}

	tree, err := fetchTree(ctx, cfg)
	if err != nil {
		return protocol.PackagesResult{}, err
	}
	return protocol.PackagesResult{
		Root:     tree.Root,
		Packages: workspace.FilterByDomain(workspace.Flatten(tree.Nodes), listDomain),
		Warning:  tree.Warning,
	}, nil
}
