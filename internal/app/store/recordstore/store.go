// internal/app/store/recordstore/store.go
package recordstore

import (
	"context"
	"fmt"

	"github.com/dalemusser/guardduty/internal/app/scheduling"
	reservationstore "github.com/dalemusser/guardduty/internal/app/store/reservations"
	userstore "github.com/dalemusser/guardduty/internal/app/store/users"
	"github.com/dalemusser/guardduty/internal/app/system/timeouts"
	"github.com/dalemusser/guardduty/internal/app/system/txn"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Announcer tells other processes that the record store changed.
type Announcer interface {
	Announce(ctx context.Context) error
}

// Store is the shared record store: the reservation ledger and the user
// directory, each replaced wholesale on write. It satisfies
// scheduling.Persister and the snapshot sync worker's loader.
type Store struct {
	db     *mongo.Database
	ledger *reservationstore.Store
	users  *userstore.Store
	bus    Announcer
	log    *zap.Logger
}

// New builds a Store on db. bus may be nil.
func New(db *mongo.Database, bus Announcer, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		ledger: reservationstore.New(db),
		users:  userstore.New(db),
		bus:    bus,
		log:    logger,
	}
}

// ReplaceLedger makes the stored ledger equal reservations.
func (s *Store) ReplaceLedger(ctx context.Context, reservations []models.Reservation) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), s.log, "replace ledger")
	defer cancel()

	err := txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		return s.ledger.ReplaceAll(ctx, reservations)
	})
	if err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	s.announce(ctx)
	return nil
}

// ReplaceDirectory makes the stored directory equal users.
func (s *Store) ReplaceDirectory(ctx context.Context, users []models.User) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), s.log, "replace directory")
	defer cancel()

	err := txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		return s.users.ReplaceAll(ctx, users)
	})
	if err != nil {
		return fmt.Errorf("replace directory: %w", err)
	}
	s.announce(ctx)
	return nil
}

func (s *Store) announce(ctx context.Context) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Announce(ctx); err != nil {
		s.log.Warn("change announcement failed", zap.Error(err))
	}
}

// Load reads the full record store.
func (s *Store) Load(ctx context.Context) (scheduling.Snapshot, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "load snapshot")
	defer cancel()

	res, err := s.ledger.All(ctx)
	if err != nil {
		return scheduling.Snapshot{}, fmt.Errorf("load ledger: %w", err)
	}
	users, err := s.users.All(ctx)
	if err != nil {
		return scheduling.Snapshot{}, fmt.Errorf("load directory: %w", err)
	}
	return scheduling.Snapshot{Reservations: res, Users: users}, nil
}

// Watch opens a change stream over both collections and sends a signal for
// every change. It fails when the deployment has no change streams
// (standalone servers). The channel is closed when ctx ends or the stream
// breaks.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ns.coll": bson.M{"$in": bson.A{reservationstore.Collection, userstore.Collection}},
		}}},
	}
	stream, err := s.db.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.Default))
	if err != nil {
		return nil, fmt.Errorf("open change stream: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			select {
			case out <- struct{}{}:
			default:
				// a signal is already pending
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.log.Warn("change stream ended", zap.Error(err))
		}
	}()
	return out, nil
}
