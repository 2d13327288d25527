package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage/memory"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *TokenManager, *memory.Store) {
	t.Helper()
	store := memory.New()
	tm := newTestManager()
	return NewAuthenticator(tm, store), tm, store
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	authn, tm, _ := newTestAuthenticator(t)
	token, err := tm.Generate(models.User{ID: "u1"})
	require.NoError(t, err)

	p, err := authn.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, token, p.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), p.ExpiresAt, time.Minute)
}

func TestAuthenticateFailures(t *testing.T) {
	ctx := context.Background()
	authn, tm, _ := newTestAuthenticator(t)
	refresh, err := tm.GenerateRefresh(models.User{ID: "u1"})
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":       "",
		"no scheme":     "abc.def.ghi",
		"empty bearer":  "Bearer ",
		"garbage":       "Bearer nope",
		"refresh token": "Bearer " + refresh,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := authn.Authenticate(ctx, header)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestRevokeIsIdempotentAndImmediate(t *testing.T) {
	ctx := context.Background()
	authn, tm, store := newTestAuthenticator(t)
	token, err := tm.Generate(models.User{ID: "u1"})
	require.NoError(t, err)

	require.NoError(t, authn.Revoke(ctx, token))
	revoked, err := store.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, authn.Revoke(ctx, token))
	revoked, err = store.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = authn.Authenticate(ctx, "Bearer "+token)
	assert.ErrorIs(t, err, ErrRevokedToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	ctx := context.Background()
	authn, tm, store := newTestAuthenticator(t)
	tm.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	token, err := tm.Generate(models.User{ID: "u1"})
	require.NoError(t, err)
	tm.now = time.Now

	require.NoError(t, authn.Revoke(ctx, token))
	revoked, err := store.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeInvalidToken(t *testing.T) {
	authn, _, _ := newTestAuthenticator(t)
	err := authn.Revoke(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	authn, tm, _ := newTestAuthenticator(t)
	refresh, err := tm.GenerateRefresh(models.User{ID: "u1"})
	require.NoError(t, err)

	access, err := authn.Refresh(ctx, refresh)
	require.NoError(t, err)
	p, err := authn.Authenticate(ctx, "Bearer "+access)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)

	require.NoError(t, authn.RevokeRefresh(ctx, refresh))
	_, err = authn.Refresh(ctx, refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = authn.Refresh(ctx, access)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
