package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Revoke upserts the token. Two racing upserts can both miss the filter and
// one of them then fails on the unique index; that outcome is still success.
func (s *Store) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	update := bson.M{"$setOnInsert": blacklistDoc{Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now().UTC()}}
	_, err := s.db.Collection(blacklistCollection).UpdateOne(ctx, bson.M{"token": token}, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.db.Collection(blacklistCollection).CountDocuments(ctx, bson.M{"token": token}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}

func (s *Store) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.Collection(blacklistCollection).DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, fmt.Errorf("prune blacklist: %w", err)
	}
	return res.DeletedCount, nil
}
