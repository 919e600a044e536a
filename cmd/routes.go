package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/pathrouter/config"
	"github.com/angeloszaimis/pathrouter/internal/tree"
)

func routesCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the router tree",
		Long:  `Print every router reachable from the root, indented under the mount that reaches it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), tree.Describe(cfg))
			return err
		},
	}
}

func checkCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "configuration OK: %d routers, root %q\n", len(cfg.Routers), cfg.Root)
			return nil
		},
	}
}
