package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/guardduty/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a directory user with the given id, name and code.
func (f *Fixtures) CreateUser(ctx context.Context, id, name, code string) models.User {
	f.t.Helper()

	u := models.User{
		ID:         id,
		Name:       name,
		LastName:   "Tester",
		Rank:       "Sergeant",
		SecretCode: code,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateReservations reserves each date key for u.
func (f *Fixtures) CreateReservations(ctx context.Context, u models.User, keys ...string) []models.Reservation {
	f.t.Helper()

	snap := u
	snap.SecretCode = ""
	out := make([]models.Reservation, 0, len(keys))
	docs := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		r := models.Reservation{DateKey: k, UserID: u.ID, User: snap}
		out = append(out, r)
		docs = append(docs, r)
	}
	if len(docs) == 0 {
		return out
	}
	if _, err := f.db.Collection("reservations").InsertMany(ctx, docs); err != nil {
		f.t.Fatalf("failed to create test reservations: %v", err)
	}
	return out
}
