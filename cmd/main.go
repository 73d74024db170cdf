package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/app"
	"github.com/yungbote/roadmap-backend/internal/platform/envutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "roadmapd",
		Short:         "Goal-to-roadmap backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.Version,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newCatalogCmd(), newTokenCmd())
	return root
}

// setup builds the logger and config every command starts from.
func setup() (*logger.Logger, app.Config, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, app.Config{}, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading environment variables...")
	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, app.Config{}, err
	}
	return log, cfg, nil
}

func newServeCmd() *cobra.Command {
	var (
		addr    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := setup()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			a, err := app.New(cmd.Context(), log, cfg, migrate)
			if err != nil {
				log.Error("Failed to init app", "error", err)
				log.Sync()
				return err
			}
			defer a.Close(context.Background())
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().BoolVar(&migrate, "migrate", envutil.Bool("DB_AUTO_MIGRATE", true), "apply schema migrations before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			theDB, err := app.OpenDB(log, cfg.DB, true)
			if err != nil {
				return err
			}
			if sqlDB, err := theDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
			log.Info("Migrations applied")
			return nil
		},
	}
}
