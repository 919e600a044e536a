package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("pathrouter failed", slog.Any("err", err))
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "pathrouter",
		Short: "Hierarchical pattern-based HTTP router",
		Long: `pathrouter dispatches each request through a tree of routers.

Every router tries its mounts in order. The first pattern that matches
strips its match length from the front of the path and hands the rest to
the mounted router. A router with no matching mount answers with its
leaf: not found, static, filesystem, proxy, redirect or metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file (default is config.yaml in ./config or .)")

	rootCmd.AddCommand(
		serveCmd(&configFile),
		routesCmd(&configFile),
		checkCmd(&configFile),
	)

	return rootCmd
}
