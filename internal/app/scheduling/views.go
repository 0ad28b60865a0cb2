// internal/app/scheduling/views.go
package scheduling

import (
	"time"

	"github.com/dalemusser/guardduty/internal/app/system/datekey"
	"github.com/dalemusser/guardduty/internal/domain/models"
)

// DayView is one reserved day as shown on the calendar.
type DayView struct {
	Date   string `json:"date"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Mine   bool   `json:"mine"`
}

// MonthView returns the reserved days of one month in chronological order,
// flagging those held by viewerID.
func (s *Service) MonthView(viewerID string, year int, month time.Month) []DayView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []DayView{}
	for _, k := range sortedKeys(s.ledger) {
		if !datekey.InMonth(k, year, month) {
			continue
		}
		r := s.ledger[k]
		out = append(out, DayView{
			Date:   k,
			UserID: r.UserID,
			Name:   s.ownerLocked(r).FullName(),
			Mine:   r.UserID == viewerID,
		})
	}
	return out
}

// Reservist returns the current profile of whoever holds dateKey.
func (s *Service) Reservist(dateKey string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.ledger[dateKey]
	if !ok {
		return models.User{}, ErrNotReserved
	}
	return s.ownerLocked(r), nil
}

// ReservationsOf returns userID's reserved days in chronological order.
func (s *Service) ReservationsOf(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []string{}
	for _, k := range sortedKeys(s.ledger) {
		if s.ledger[k].UserID == userID {
			out = append(out, k)
		}
	}
	return out
}

// SecretCode returns the acting user's current swap code.
func (s *Service) SecretCode(actorID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.dir.get(actorID)
	if !ok {
		return "", ErrUnknownActor
	}
	return u.SecretCode, nil
}

// User looks a user up in the directory.
func (s *Service) User(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir.get(id)
}
