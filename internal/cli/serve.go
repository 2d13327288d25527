package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hongminglow/storefront-be/internal/jobs"
	"github.com/hongminglow/storefront-be/internal/order"
	"github.com/hongminglow/storefront-be/internal/server"
)

const shutdownTimeout = 15 * time.Second

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and maintenance jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	scheduler, err := jobs.NewScheduler(jobs.Schedule{
		BlacklistPrune: cfg.BlacklistPruneSchedule,
		CartReconcile:  cfg.CartReconcileSchedule,
		CartGrace:      cfg.CartConvertingGrace,
	}, store, order.NewService(store, log, cfg.CartMaxAttempts), log)
	if err != nil {
		return err
	}
	scheduler.Start()

	srv := server.New(cfg, store, log)
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTPAddress(), "driver": cfg.StorageDriver}).Info("storefront backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Warn("graceful shutdown error")
	}
	scheduler.Stop(ctxShutdown)
	log.Info("storefront backend stopped")
	return nil
}
