package postgres

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront-be/internal/storage"
	"github.com/hongminglow/storefront-be/internal/storage/postgres/migrations"
	"github.com/hongminglow/storefront-be/internal/storage/storagetest"
)

func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_STORE_INTEGRATION") != "true" {
		t.Skip("set RUN_STORE_INTEGRATION=true to run this integration test")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Fatal("DATABASE_URL is required")
	}

	store, err := NewStore(context.Background(), url)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(context.Background()))

	storagetest.Run(t, store)
}

func TestErrorMapping(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))

	assert.ErrorIs(t, notFound(pgx.ErrNoRows), storage.ErrNotFound)
	other := errors.New("boom")
	assert.Equal(t, other, notFound(other))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Contains(t, entries, "00001_init.sql")
}
