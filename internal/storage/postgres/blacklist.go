package postgres

import (
	"context"
	"fmt"
	"time"
)

// Revoke records token; a duplicate insert is absorbed by ON CONFLICT.
func (s *Store) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	const query = `
		INSERT INTO blacklist_tokens (token, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING;
	`
	if _, err := s.pool.Exec(ctx, query, token, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether token is blacklisted.
func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM blacklist_tokens WHERE token = $1);`
	var revoked bool
	if err := s.pool.QueryRow(ctx, query, token).Scan(&revoked); err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return revoked, nil
}

// PruneExpired removes entries for tokens that can no longer authenticate.
func (s *Store) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM blacklist_tokens WHERE expires_at < $1;`, now)
	if err != nil {
		return 0, fmt.Errorf("prune blacklist: %w", err)
	}
	return tag.RowsAffected(), nil
}
