package scheduling_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/domain/models"
)

func TestValidate_RangeTooShort(t *testing.T) {
	s := newService(t, nil)
	dana := user("u1", "Dana", "code-dana")
	s.Apply(scheduling.Snapshot{Users: []models.User{dana}})
	before := s.Snapshot()

	_, err := s.Validate(day(t, "2024-06-12"), day(t, "2024-06-12"))
	assertIs(t, err, scheduling.ErrRangeTooShort)

	_, err = s.Commit(context.Background(), "u1", day(t, "2024-06-12"), day(t, "2024-06-12"))
	assertIs(t, err, scheduling.ErrRangeTooShort)
	assertUnchanged(t, s, before)
}

func TestValidate_InvertedRangeCarriesRestartAnchor(t *testing.T) {
	s := newService(t, nil)

	_, err := s.Validate(day(t, "2024-06-20"), day(t, "2024-06-15"))
	assertIs(t, err, scheduling.ErrRangeInverted)

	var inv *scheduling.InvertedRangeError
	if !errors.As(err, &inv) {
		t.Fatalf("expected *InvertedRangeError, got %T", err)
	}
	if inv.RestartFrom != "2024-06-15" {
		t.Errorf("RestartFrom = %q, want 2024-06-15", inv.RestartFrom)
	}
	if scheduling.KindOf(err) != scheduling.KindValidation {
		t.Errorf("KindOf = %v, want validation", scheduling.KindOf(err))
	}
}

func TestValidate_DateInPast(t *testing.T) {
	s := newService(t, nil)

	_, err := s.Validate(day(t, "2024-06-09"), day(t, "2024-06-11"))
	assertIs(t, err, scheduling.ErrDateInPast)

	// Today itself is not in the past.
	if _, err := s.Validate(day(t, "2024-06-10"), day(t, "2024-06-11")); err != nil {
		t.Errorf("range starting today rejected: %v", err)
	}
}

func TestValidate_OverlapWithAnyOwner(t *testing.T) {
	dana := user("u1", "Dana", "code-dana")
	omer := user("u2", "Omer", "code-omer")

	tests := []struct {
		name     string
		from, to string
		wantDays []string
	}{
		{"other user's day inside", "2024-06-14", "2024-06-16", []string{"2024-06-15"}},
		{"touching start", "2024-06-13", "2024-06-14", nil},
		{"own days", "2024-06-19", "2024-06-21", []string{"2024-06-20", "2024-06-21"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t, nil)
			res := append(reserve(omer, "2024-06-15"), reserve(dana, "2024-06-20", "2024-06-21")...)
			s.Apply(scheduling.Snapshot{Users: []models.User{dana, omer}, Reservations: res})
			before := s.Snapshot()

			sel, err := s.Validate(day(t, tt.from), day(t, tt.to))
			if tt.wantDays == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(sel.Days) != 2 {
					t.Errorf("Days = %v, want 2 days", sel.Days)
				}
				return
			}

			assertIs(t, err, scheduling.ErrRangeOverlap)
			var ov *scheduling.OverlapError
			if !errors.As(err, &ov) {
				t.Fatalf("expected *OverlapError, got %T", err)
			}
			if !reflect.DeepEqual(ov.Days, tt.wantDays) {
				t.Errorf("overlap days = %v, want %v", ov.Days, tt.wantDays)
			}

			// Rejection is repeatable and never mutates.
			for i := 0; i < 2; i++ {
				_, err := s.Commit(context.Background(), "u1", day(t, tt.from), day(t, tt.to))
				assertIs(t, err, scheduling.ErrRangeOverlap)
			}
			assertUnchanged(t, s, before)
		})
	}
}

func TestCommit_InsertsOneReservationPerDay(t *testing.T) {
	store := &fakeStore{}
	s := newService(t, store)
	dana := user("u1", "Dana", "code-dana")
	s.Apply(scheduling.Snapshot{Users: []models.User{dana}})

	keys, err := s.Commit(context.Background(), "u1", day(t, "2024-06-29"), day(t, "2024-07-02"))
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	want := []string{"2024-06-29", "2024-06-30", "2024-07-01", "2024-07-02"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}

	snap := s.Snapshot()
	if len(snap.Reservations) != len(want) {
		t.Fatalf("ledger has %d reservations, want %d", len(snap.Reservations), len(want))
	}
	for i, r := range snap.Reservations {
		if r.DateKey != want[i] || r.UserID != "u1" {
			t.Errorf("reservation %d = %+v", i, r)
		}
		if r.User.Name != "Dana" {
			t.Errorf("snapshot name = %q, want Dana", r.User.Name)
		}
		if r.User.SecretCode != "" {
			t.Error("reservation snapshot must not carry the secret code")
		}
	}

	if store.ledgerWrites != 1 {
		t.Errorf("ledger writes = %d, want 1", store.ledgerWrites)
	}
	if len(store.ledger) != len(want) {
		t.Errorf("persisted %d reservations, want %d", len(store.ledger), len(want))
	}
}

func TestCommit_UnknownActor(t *testing.T) {
	s := newService(t, nil)
	_, err := s.Commit(context.Background(), "ghost", day(t, "2024-06-12"), day(t, "2024-06-13"))
	assertIs(t, err, scheduling.ErrUnknownActor)
}

func TestCommit_PersistenceFailureKeepsMutation(t *testing.T) {
	store := &fakeStore{fail: errors.New("store offline")}
	s := newService(t, store)
	s.Apply(scheduling.Snapshot{Users: []models.User{user("u1", "Dana", "code-dana")}})

	keys, err := s.Commit(context.Background(), "u1", day(t, "2024-06-12"), day(t, "2024-06-13"))
	if scheduling.KindOf(err) != scheduling.KindPersistence {
		t.Fatalf("KindOf(%v) = %v, want persistence", err, scheduling.KindOf(err))
	}
	if len(keys) != 2 {
		t.Errorf("keys = %v, want two days", keys)
	}
	if got := len(s.Snapshot().Reservations); got != 2 {
		t.Errorf("ledger has %d reservations after failed write, want 2", got)
	}
}

func TestCommit_ConcurrentOverlappingCommitsOnlyOneWins(t *testing.T) {
	s := newService(t, nil)
	s.Apply(scheduling.Snapshot{Users: []models.User{
		user("u1", "Dana", "code-dana"),
		user("u2", "Omer", "code-omer"),
	}})

	from, to := day(t, "2024-06-12"), day(t, "2024-06-14")
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = s.Commit(context.Background(), id, from, to)
		}(i, id)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assertIs(t, err, scheduling.ErrRangeOverlap)
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("failures = %d, want exactly 1", failures)
	}

	o := owners(s)
	if len(o) != 3 {
		t.Fatalf("ledger has %d days, want 3", len(o))
	}
	first := o["2024-06-12"]
	for k, id := range o {
		if id != first {
			t.Errorf("%s owned by %s, want every day owned by %s", k, id, first)
		}
	}
}
