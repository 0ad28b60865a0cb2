package announce_test

import (
	"testing"
	"time"

	"github.com/dalemusser/guardduty/internal/app/system/announce"
	"github.com/dalemusser/guardduty/internal/testutil"
	"go.uber.org/zap"
)

func TestBus_DeliversOtherOriginsOnly(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := announce.New(client, zap.NewNop())
	b := announce.New(client, zap.NewNop())
	if a.Origin() == b.Origin() {
		t.Fatal("buses share an origin")
	}

	changes, err := a.Changes(ctx)
	if err != nil {
		t.Fatalf("Changes failed: %v", err)
	}

	if err := a.Announce(ctx); err != nil {
		t.Fatalf("Announce failed: %v", err)
	}
	select {
	case <-changes:
		t.Fatal("bus received its own announcement")
	case <-time.After(200 * time.Millisecond):
	}

	if err := b.Announce(ctx); err != nil {
		t.Fatalf("Announce failed: %v", err)
	}
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("announcement from another origin not delivered")
	}
}

func TestBus_ChangesClosesOnCancel(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	ctx, cancel := testutil.TestContext()

	changes, err := announce.New(client, zap.NewNop()).Changes(ctx)
	if err != nil {
		cancel()
		t.Fatalf("Changes failed: %v", err)
	}
	cancel()

	select {
	case _, ok := <-changes:
		if ok {
			// drain a pending signal, then expect close
			<-changes
		}
	case <-time.After(5 * time.Second):
		t.Fatal("changes channel not closed after cancel")
	}
}
