package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage"
)

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	doc := userDoc{ID: user.ID, Username: user.Username, PasswordHash: user.PasswordHash, CreatedAt: user.CreatedAt}
	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var doc userDoc
	if err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return models.User{}, notFound(err)
	}
	return models.User{ID: doc.ID, Username: doc.Username, PasswordHash: doc.PasswordHash, CreatedAt: doc.CreatedAt}, nil
}
