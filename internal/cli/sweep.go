package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hongminglow/storefront-be/internal/jobs"
	"github.com/hongminglow/storefront-be/internal/order"
)

// NewSweepCommand runs each maintenance job once.
func NewSweepCommand() *cobra.Command {
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Prune expired blacklist entries and reconcile stuck carts once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("grace") {
				grace = cfg.CartConvertingGrace
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}
			defer store.Close()

			now := time.Now()
			return errors.Join(
				jobs.PruneBlacklist(cmd.Context(), store, now, log),
				jobs.ReconcileCarts(cmd.Context(), order.NewService(store, log, cfg.CartMaxAttempts), now, grace, log),
			)
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", 0, "how long a cart may stay converting (default from CART_CONVERTING_GRACE_MINUTES)")
	return cmd
}
