package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, c domain.Credentials) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.c(colUsers).InsertOne(ctx, userDoc{
		ID:        c.ID,
		Username:  c.Username,
		Email:     c.Email,
		Password:  c.PasswordHash,
		Role:      string(c.Role),
		CreatedAt: store.FormatTime(c.CreatedAt),
	})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("username %q: %w", c.Username, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*domain.Credentials, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	doc, err := findOne[userDoc](ctx, s.c(colUsers), bson.M{"username": username}, "user")
	if err != nil {
		return nil, err
	}
	return doc.credentials()
}

func (s *Store) UserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	doc, err := findOne[userDoc](ctx, s.c(colUsers), byID(id), "user")
	if err != nil {
		return nil, err
	}
	c, err := doc.credentials()
	if err != nil {
		return nil, err
	}
	return &c.User, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	docs, err := findAll[userDoc](ctx, s.c(colUsers), bson.M{},
		options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		c, err := d.credentials()
		if err != nil {
			return nil, err
		}
		out = append(out, c.User)
	}
	return out, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.c(colUsers).DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
