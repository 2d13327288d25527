package jobs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront-be/internal/order"
	"github.com/hongminglow/storefront-be/internal/storage/memory"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeReconciler struct {
	cutoff time.Time
	err    error
}

func (f *fakeReconciler) Reconcile(_ context.Context, cutoff time.Time) (order.ReconcileResult, error) {
	f.cutoff = cutoff
	return order.ReconcileResult{Reverted: 1}, f.err
}

func TestPruneBlacklist(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Now()
	require.NoError(t, store.Revoke(ctx, "old", now.Add(-time.Second)))
	require.NoError(t, store.Revoke(ctx, "new", now.Add(time.Hour)))

	require.NoError(t, PruneBlacklist(ctx, store, now, quietLogger()))

	gone, _ := store.IsRevoked(ctx, "old")
	kept, _ := store.IsRevoked(ctx, "new")
	assert.False(t, gone)
	assert.True(t, kept)
}

func TestReconcileCartsUsesGrace(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &fakeReconciler{}
	require.NoError(t, ReconcileCarts(context.Background(), r, now, 10*time.Minute, quietLogger()))
	assert.Equal(t, now.Add(-10*time.Minute), r.cutoff)

	r.err = errors.New("boom")
	assert.Error(t, ReconcileCarts(context.Background(), r, now, time.Minute, quietLogger()))
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(Schedule{BlacklistPrune: "whenever", CartReconcile: "@every 1m"},
		memory.New(), &fakeReconciler{}, quietLogger())
	assert.Error(t, err)

	_, err = NewScheduler(Schedule{BlacklistPrune: "@every 1h", CartReconcile: "nope"},
		memory.New(), &fakeReconciler{}, quietLogger())
	assert.Error(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := NewScheduler(Schedule{BlacklistPrune: "@every 1h", CartReconcile: "@every 5m"},
		memory.New(), &fakeReconciler{}, quietLogger())
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}

type panickingReconciler struct{}

func (panickingReconciler) Reconcile(context.Context, time.Time) (order.ReconcileResult, error) {
	panic("reconcile exploded")
}

func TestSchedulerRecoversPanicsIntoLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	s, err := NewScheduler(Schedule{BlacklistPrune: "@every 1h", CartReconcile: "@every 5m"},
		memory.New(), panickingReconciler{}, log)
	require.NoError(t, err)

	for _, entry := range s.cron.Entries() {
		require.NotPanics(t, entry.WrappedJob.Run)
	}

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Data["component"] == "cron" && strings.Contains(e.Message, "reconcile exploded") {
			found = true
		}
	}
	assert.True(t, found, "recovered panic must reach the logrus logger")
}
