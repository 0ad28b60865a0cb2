// internal/app/scheduling/seed.go
package scheduling

import (
	"context"
	"errors"

	"github.com/dalemusser/guardduty/internal/app/system/datekey"
	"github.com/dalemusser/guardduty/internal/app/system/secretcode"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.uber.org/zap"
)

type demoUser struct {
	email, name, lastName, rank string
	admin                       bool
	from, to                    int // reserved days, as offsets from today
}

// demoUsers are keyed by email, which doubles as their ID.
var demoUsers = []demoUser{
	{email: "israel@example.com", name: "ישראל", lastName: "ישראלי", rank: `רב"ט`, admin: true},
	{email: "moshe@example.com", name: "משה", lastName: "כהן", rank: "סמל", from: 5, to: 7},
	{email: "sara@example.com", name: "שרה", lastName: "לוי", rank: `רב"ט`, from: 10, to: 12},
}

// SeedDemo fills an empty service with three demo users, one of them an
// admin, and two three-day reservations starting five and ten days from
// today. It reports false and changes nothing when the directory or the
// ledger already holds data.
func (s *Service) SeedDemo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.dir.len() > 0 || len(s.ledger) > 0 {
		s.mu.Unlock()
		return false, nil
	}

	today := datekey.StartOfDay(s.now(), s.loc)
	created := s.now().UTC()
	for _, d := range demoUsers {
		email := d.email
		u := models.User{
			ID:         d.email,
			Name:       d.name,
			LastName:   d.lastName,
			Rank:       d.rank,
			SecretCode: secretcode.NewUnique(s.newCode, s.dir.codeInUse),
			IsAdmin:    d.admin,
			Email:      &email,
			CreatedAt:  created,
		}
		s.dir.put(u)
		if d.to == 0 {
			continue
		}
		snap := snapshotOf(u)
		for i := d.from; i <= d.to; i++ {
			k := datekey.Format(today.AddDate(0, 0, i))
			s.ledger[k] = models.Reservation{DateKey: k, UserID: u.ID, User: snap}
		}
	}
	ledgerW, dirW := s.captureLedgerLocked(), s.captureDirectoryLocked()
	s.mu.Unlock()

	s.log.Info("seeded demo directory",
		zap.Int("users", len(demoUsers)),
		zap.Int("reservations", len(ledgerW.reservations)))

	ledgerErr := s.persistLedger(ctx, ledgerW)
	dirErr := s.persistDirectory(ctx, dirW)
	return true, errors.Join(ledgerErr, dirErr)
}
