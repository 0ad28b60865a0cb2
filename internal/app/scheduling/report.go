// internal/app/scheduling/report.go
package scheduling

import (
	"time"

	"github.com/dalemusser/guardduty/internal/app/system/datekey"
	"github.com/dalemusser/guardduty/internal/domain/models"
)

// UnderAssignedThreshold is the monthly duty count a user must reach to be
// left out of the under-assignment report.
const UnderAssignedThreshold = 7

// DutyCount is one row of the monthly report.
type DutyCount struct {
	User  models.User `json:"user"`
	Count int         `json:"count"`
}

// MonthlyReport lists, in directory order, every user with fewer than
// UnderAssignedThreshold reservations in the calendar month containing now
// (evaluated in the service location). Only admins may run it.
func (s *Service) MonthlyReport(actorID string, now time.Time) ([]DutyCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, ok := s.dir.get(actorID)
	if !ok {
		return nil, ErrUnknownActor
	}
	if !actor.IsAdmin {
		return nil, ErrNotAdmin
	}

	local := now.In(s.loc)
	year, month := local.Year(), local.Month()

	counts := make(map[string]int)
	for k, r := range s.ledger {
		if datekey.InMonth(k, year, month) {
			counts[r.UserID]++
		}
	}

	out := []DutyCount{}
	for _, u := range s.dir.list() {
		if n := counts[u.ID]; n < UnderAssignedThreshold {
			out = append(out, DutyCount{User: u, Count: n})
		}
	}
	return out, nil
}

// ExportRow is one reservation projected for export.
type ExportRow struct {
	Name    string
	UserID  string
	DateKey string
}

// Export projects every reservation whose day lies in [start, end] inclusive,
// in chronological order. The name is the occupant's current directory name,
// or the reservation's snapshot when the user is no longer known.
func (s *Service) Export(start, end time.Time) ([]ExportRow, error) {
	start = datekey.StartOfDay(start, s.loc)
	end = datekey.StartOfDay(end, s.loc)
	if end.Before(start) {
		return nil, ErrRangeInverted
	}
	lo, hi := datekey.Format(start), datekey.Format(end)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []ExportRow
	for _, k := range sortedKeys(s.ledger) {
		// Canonical keys order lexically the same as chronologically.
		if k < lo || k > hi {
			continue
		}
		r := s.ledger[k]
		rows = append(rows, ExportRow{
			Name:    s.ownerLocked(r).Name,
			UserID:  r.UserID,
			DateKey: k,
		})
	}
	return rows, nil
}

// ownerLocked resolves a reservation's occupant through the directory.
func (s *Service) ownerLocked(r models.Reservation) models.User {
	if u, ok := s.dir.get(r.UserID); ok {
		return u
	}
	return r.User
}
