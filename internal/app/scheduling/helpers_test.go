package scheduling_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/datekey"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.uber.org/zap"
)

// fixedNow is "today" for every test in this package.
var fixedNow = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

// fakeStore records the mappings written to it and can be told to fail.
type fakeStore struct {
	mu           sync.Mutex
	ledger       []models.Reservation
	users        []models.User
	ledgerWrites int
	dirWrites    int
	fail         error
}

func (f *fakeStore) ReplaceLedger(_ context.Context, res []models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ledgerWrites++
	if f.fail != nil {
		return f.fail
	}
	f.ledger = append([]models.Reservation(nil), res...)
	return nil
}

func (f *fakeStore) ReplaceDirectory(_ context.Context, users []models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirWrites++
	if f.fail != nil {
		return f.fail
	}
	f.users = append([]models.User(nil), users...)
	return nil
}

// sequentialCodes returns code-0001, code-0002, ...
func sequentialCodes() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("code-%04d", n)
	}
}

func newService(t *testing.T, store scheduling.Persister, opts ...scheduling.Option) *scheduling.Service {
	t.Helper()
	base := []scheduling.Option{
		scheduling.WithClock(func() time.Time { return fixedNow }),
		scheduling.WithLocation(time.UTC),
		scheduling.WithCodeGenerator(sequentialCodes()),
	}
	return scheduling.New(store, zap.NewNop(), append(base, opts...)...)
}

func user(id, name, code string) models.User {
	return models.User{ID: id, Name: name, LastName: "Tester", Rank: "Sergeant", SecretCode: code}
}

func day(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := datekey.Parse(key, time.UTC)
	if err != nil {
		t.Fatalf("bad test date %q: %v", key, err)
	}
	return d
}

// reserve builds reservations for u on each key.
func reserve(u models.User, keys ...string) []models.Reservation {
	out := make([]models.Reservation, len(keys))
	for i, k := range keys {
		out[i] = models.Reservation{DateKey: k, UserID: u.ID, User: u}
	}
	return out
}

// owners maps date key -> user id for the service's current ledger.
func owners(s *scheduling.Service) map[string]string {
	out := make(map[string]string)
	for _, r := range s.Snapshot().Reservations {
		out[r.DateKey] = r.UserID
	}
	return out
}

func codes(s *scheduling.Service) map[string]string {
	out := make(map[string]string)
	for _, u := range s.Snapshot().Users {
		out[u.ID] = u.SecretCode
	}
	return out
}

func assertUnchanged(t *testing.T, s *scheduling.Service, before scheduling.Snapshot) {
	t.Helper()
	after := s.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("state changed:\nbefore %+v\nafter  %+v", before, after)
	}
}

func assertIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
