// Package jobs runs periodic maintenance: blacklist pruning and the sweep
// that repairs carts left in converting status.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront-be/internal/order"
	"github.com/hongminglow/storefront-be/internal/storage"
)

// Reconciler repairs carts stuck mid-checkout.
type Reconciler interface {
	Reconcile(ctx context.Context, cutoff time.Time) (order.ReconcileResult, error)
}

// PruneBlacklist removes blacklist entries whose token has expired.
func PruneBlacklist(ctx context.Context, store storage.BlacklistStore, now time.Time, log logrus.FieldLogger) error {
	n, err := store.PruneExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("prune blacklist: %w", err)
	}
	log.WithField("removed", n).Info("blacklist pruned")
	return nil
}

// ReconcileCarts sweeps carts that have been converting for longer than grace.
func ReconcileCarts(ctx context.Context, r Reconciler, now time.Time, grace time.Duration, log logrus.FieldLogger) error {
	res, err := r.Reconcile(ctx, now.Add(-grace))
	log.WithFields(logrus.Fields{"completed": res.Completed, "reverted": res.Reverted}).Info("cart reconcile finished")
	if err != nil {
		return fmt.Errorf("reconcile carts: %w", err)
	}
	return nil
}

// Schedule holds the cron specs for each job.
type Schedule struct {
	BlacklistPrune string
	CartReconcile  string
	CartGrace      time.Duration
	// JobTimeout bounds a single run.
	JobTimeout time.Duration
}

// Scheduler drives the maintenance jobs on cron.
type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

// NewScheduler registers both jobs. It fails on an unparsable cron spec.
func NewScheduler(sched Schedule, blacklist storage.BlacklistStore, reconciler Reconciler, log logrus.FieldLogger) (*Scheduler, error) {
	if sched.JobTimeout <= 0 {
		sched.JobTimeout = time.Minute
	}
	cronLog := cron.PrintfLogger(log.WithField("component", "cron"))
	c := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))
	s := &Scheduler{cron: c, log: log}

	if _, err := c.AddFunc(sched.BlacklistPrune, s.wrap("blacklist_prune", sched.JobTimeout, func(ctx context.Context) error {
		return PruneBlacklist(ctx, blacklist, time.Now(), log)
	})); err != nil {
		return nil, fmt.Errorf("schedule blacklist prune %q: %w", sched.BlacklistPrune, err)
	}
	if _, err := c.AddFunc(sched.CartReconcile, s.wrap("cart_reconcile", sched.JobTimeout, func(ctx context.Context) error {
		return ReconcileCarts(ctx, reconciler, time.Now(), sched.CartGrace, log)
	})); err != nil {
		return nil, fmt.Errorf("schedule cart reconcile %q: %w", sched.CartReconcile, err)
	}
	return s, nil
}

func (s *Scheduler) wrap(name string, timeout time.Duration, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := job(ctx); err != nil {
			s.log.WithError(err).WithField("job", name).Error("scheduled job failed")
		}
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
