package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/pathrouter/config"
	"github.com/angeloszaimis/pathrouter/internal/httpserver"
	"github.com/angeloszaimis/pathrouter/pkg/logger"
)

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the router",
		Long:  `Load the configuration, build the router tree and serve HTTP until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configFile)
		},
	}
}

func serve(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := setupRouter(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build router tree: %w", err)
	}
	defer app.Close()

	srv, err := httpserver.New(cfg.Server.Address, app.handler, log)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Router started",
		slog.String("address", srv.Addr()),
		slog.String("root", cfg.Root),
		slog.Int("routers", len(cfg.Routers)))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
		return nil
	case err := <-srvErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}
