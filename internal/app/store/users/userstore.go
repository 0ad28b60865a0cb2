package userstore

import (
	"context"

	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds the user directory, keyed by identity provider id.
const Collection = "users"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// All returns the directory in join order (created_at, then id).
func (s *Store) All(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads one user.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ReplaceAll makes the collection hold exactly users.
func (s *Store) ReplaceAll(ctx context.Context, users []models.User) error {
	keep := make([]string, 0, len(users))
	writes := make([]mongo.WriteModel, 0, len(users)+1)
	for _, u := range users {
		keep = append(keep, u.ID)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": u.ID}).
			SetReplacement(u).
			SetUpsert(true))
	}
	writes = append(writes, mongo.NewDeleteManyModel().
		SetFilter(bson.M{"_id": bson.M{"$nin": keep}}))

	_, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}
