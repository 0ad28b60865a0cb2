package reservationstore_test

import (
	"testing"

	reservationstore "github.com/dalemusser/guardduty/internal/app/store/reservations"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"github.com/dalemusser/guardduty/internal/testutil"
)

func TestReplaceAll_ExactMapping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reservationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	dana := models.User{ID: "u1", Name: "Dana"}
	omer := models.User{ID: "u2", Name: "Omer"}

	first := []models.Reservation{
		{DateKey: "2024-06-13", UserID: "u1", User: dana},
		{DateKey: "2024-06-12", UserID: "u1", User: dana},
		{DateKey: "2024-06-20", UserID: "u2", User: omer},
	}
	if err := store.ReplaceAll(ctx, first); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	// Swap-like rewrite: owners change and one day disappears.
	second := []models.Reservation{
		{DateKey: "2024-06-12", UserID: "u2", User: omer},
		{DateKey: "2024-06-20", UserID: "u1", User: dana},
	}
	if err := store.ReplaceAll(ctx, second); err != nil {
		t.Fatalf("second ReplaceAll failed: %v", err)
	}

	got, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reservations, want 2: %+v", len(got), got)
	}
	if got[0].DateKey != "2024-06-12" || got[0].UserID != "u2" || got[0].User.Name != "Omer" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].DateKey != "2024-06-20" || got[1].UserID != "u1" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestReplaceAll_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reservationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.ReplaceAll(ctx, []models.Reservation{{DateKey: "2024-06-12", UserID: "u1"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.ReplaceAll(ctx, nil); err != nil {
		t.Fatalf("ReplaceAll(nil) failed: %v", err)
	}
	got, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("collection not emptied: %+v", got)
	}
}
