package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"user-account-service/cmd/api/app"
	"user-account-service/cmd/api/infrastructure"
	"user-account-service/cmd/api/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "application exited with error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "user-account-service",
		Short:         "User account REST service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			l, err := app.NewLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			ctx, stop := server.WithSignal(cmd.Context())
			defer stop()

			application, err := app.New(ctx, cfg, l)
			if err != nil {
				l.Error("failed to initialize application", zap.Error(err))
				_ = app.SyncLogger(l)
				return err
			}

			return application.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and seed default roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			l, err := app.NewLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = app.SyncLogger(l) }()

			db, err := infrastructure.NewDatabase(cfg, l)
			if err != nil {
				return err
			}
			defer func() { _ = infrastructure.CloseDatabase(db) }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return infrastructure.MigrateDatabase(ctx, db, l)
		},
	}
}
