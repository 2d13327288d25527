package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hongminglow/storefront-be/internal/storage"
)

// ErrUnauthorized is the root of every authentication failure.
var ErrUnauthorized = errors.New("unauthorized")

var (
	ErrMissingToken = fmt.Errorf("%w: token required", ErrUnauthorized)
	ErrRevokedToken = fmt.Errorf("%w: token revoked", ErrUnauthorized)
	ErrBadToken     = fmt.Errorf("%w: token invalid", ErrUnauthorized)
)

// Principal is the identity attached to an authenticated request.
type Principal struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Authenticator validates bearer tokens against the signing key and the blacklist.
type Authenticator struct {
	tokens    *TokenManager
	blacklist storage.BlacklistStore
}

func NewAuthenticator(tokens *TokenManager, blacklist storage.BlacklistStore) *Authenticator {
	return &Authenticator{tokens: tokens, blacklist: blacklist}
}

// Authenticate resolves an Authorization header value to a Principal. The
// blacklist is consulted on every call so a logout takes effect immediately.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (Principal, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return Principal{}, ErrMissingToken
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	revoked, err := a.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return Principal{}, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return Principal{}, ErrRevokedToken
	}
	return Principal{UserID: claims.UserID, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Revoke blacklists an access token until its natural expiry. A token that
// has already expired needs no entry and is accepted silently.
func (a *Authenticator) Revoke(ctx context.Context, token string) error {
	claims, err := a.tokens.Parse(token)
	return a.revoke(ctx, token, claims, err)
}

// RevokeRefresh blacklists a refresh token.
func (a *Authenticator) RevokeRefresh(ctx context.Context, token string) error {
	claims, err := a.tokens.ParseRefresh(token)
	return a.revoke(ctx, token, claims, err)
}

// Refresh exchanges a live, unrevoked refresh token for a new access token.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := a.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	revoked, err := a.blacklist.IsRevoked(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return "", ErrRevokedToken
	}
	return a.tokens.sign(claims.UserID, tokenTypeAccess, a.tokens.secret, a.tokens.ttl)
}

func (a *Authenticator) revoke(ctx context.Context, token string, claims *Claims, parseErr error) error {
	switch {
	case errors.Is(parseErr, ErrTokenExpired):
		return nil
	case parseErr != nil:
		return fmt.Errorf("%w: %v", ErrBadToken, parseErr)
	}
	if err := a.blacklist.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
