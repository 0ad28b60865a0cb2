// internal/app/bootstrap/fetcher.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/auth"
)

// directoryFetcher answers LoadSessionUser from the in-memory directory, so
// a user removed from the record store is signed out on the next request
// after the snapshot reaches this instance.
type directoryFetcher struct {
	svc *scheduling.Service
}

func (f directoryFetcher) FetchUser(_ context.Context, userID string) *auth.SessionUser {
	u, ok := f.svc.User(userID)
	if !ok {
		return nil
	}
	su := &auth.SessionUser{
		ID:      u.ID,
		Name:    u.FullName(),
		IsAdmin: u.IsAdmin,
	}
	if u.Email != nil {
		su.Email = *u.Email
	}
	return su
}
