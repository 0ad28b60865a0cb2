// internal/app/scheduling/reserve.go
package scheduling

import (
	"context"
	"time"

	"github.com/dalemusser/guardduty/internal/app/system/datekey"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.uber.org/zap"
)

// Selection is a range that passed validation and may be committed.
type Selection struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Days []string `json:"days"`
}

// Validate checks the inclusive range [from, to] against the ledger. Only the
// calendar dates of from and to (in the service location) matter.
//
// Checks run in this order: inverted (*InvertedRangeError), shorter than two
// days (ErrRangeTooShort), starting before today (ErrDateInPast), touching a
// reserved day of anyone's (*OverlapError).
func (s *Service) Validate(from, to time.Time) (Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validateLocked(from, to)
}

func (s *Service) validateLocked(from, to time.Time) (Selection, error) {
	from = datekey.StartOfDay(from, s.loc)
	to = datekey.StartOfDay(to, s.loc)

	if to.Before(from) {
		return Selection{}, &InvertedRangeError{RestartFrom: datekey.Format(to)}
	}
	if datekey.DaysBetween(from, to) < 1 {
		return Selection{}, ErrRangeTooShort
	}
	// Days only grow from from, so checking the first day covers the range.
	if from.Before(datekey.StartOfDay(s.now(), s.loc)) {
		return Selection{}, ErrDateInPast
	}

	keys := datekey.Keys(from, to)
	var taken []string
	for _, k := range keys {
		if _, ok := s.ledger[k]; ok {
			taken = append(taken, k)
		}
	}
	if len(taken) > 0 {
		return Selection{}, &OverlapError{Days: taken}
	}

	return Selection{From: keys[0], To: keys[len(keys)-1], Days: keys}, nil
}

// Commit reserves every day of [from, to] for the acting user and returns the
// created date keys.
//
// The range is validated again under the write lock, so a commit that raced
// with another one fails with ErrRangeOverlap and applies nothing. When the
// ledger cannot be persisted afterwards, Commit returns the keys together with
// a *PersistenceError; the reservation stays in effect.
func (s *Service) Commit(ctx context.Context, actorID string, from, to time.Time) ([]string, error) {
	s.mu.Lock()
	actor, ok := s.dir.get(actorID)
	if !ok {
		s.mu.Unlock()
		return nil, ErrUnknownActor
	}
	sel, err := s.validateLocked(from, to)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snap := snapshotOf(actor)
	for _, k := range sel.Days {
		s.ledger[k] = models.Reservation{DateKey: k, UserID: actor.ID, User: snap}
	}
	write := s.captureLedgerLocked()
	s.mu.Unlock()

	s.log.Info("reservation committed",
		zap.String("user_id", actor.ID),
		zap.String("from", sel.From),
		zap.String("to", sel.To),
		zap.Int("days", len(sel.Days)))

	if err := s.persistLedger(ctx, write); err != nil {
		return sel.Days, err
	}
	return sel.Days, nil
}
