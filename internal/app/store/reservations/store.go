// internal/app/store/reservations/store.go
package reservationstore

import (
	"context"

	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per reserved day, keyed by date key.
const Collection = "reservations"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// All returns every reservation in date order.
func (s *Store) All(ctx context.Context) ([]models.Reservation, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Reservation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceAll makes the collection hold exactly res: every entry is upserted
// by date key and every other document is removed.
func (s *Store) ReplaceAll(ctx context.Context, res []models.Reservation) error {
	keep := make([]string, 0, len(res))
	writes := make([]mongo.WriteModel, 0, len(res)+1)
	for _, r := range res {
		keep = append(keep, r.DateKey)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": r.DateKey}).
			SetReplacement(r).
			SetUpsert(true))
	}
	writes = append(writes, mongo.NewDeleteManyModel().
		SetFilter(bson.M{"_id": bson.M{"$nin": keep}}))

	_, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}
