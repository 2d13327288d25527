package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hongminglow/storefront-be/internal/config"
)

// NewMigrateCommand applies schema migrations (Postgres) or index setup
// (Mongo) and exits.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.StorageDriver == config.DriverMemory {
				return errors.New("migrate: memory driver has no schema")
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			store.Close()
			log.WithField("driver", cfg.StorageDriver).Info("migrations applied")
			return nil
		},
	}
}
