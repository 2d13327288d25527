// Package cli defines the storefront command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hongminglow/storefront-be/internal/config"
	"github.com/hongminglow/storefront-be/internal/logging"
	"github.com/hongminglow/storefront-be/internal/storage"
	"github.com/hongminglow/storefront-be/internal/storage/memory"
	mongostore "github.com/hongminglow/storefront-be/internal/storage/mongo"
	"github.com/hongminglow/storefront-be/internal/storage/postgres"
)

// NewRootCommand creates the root command. Running it bare starts the server.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront e-commerce backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewSeedCommand())
	cmd.AddCommand(NewSweepCommand())

	return cmd
}

// setup loads config and builds the logger shared by every subcommand.
func setup() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat), nil
}

// openStore connects the backend selected by STORAGE_DRIVER. Postgres runs
// its migrations on connect; Mongo ensures its indexes.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMongo:
		store, err := mongostore.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
