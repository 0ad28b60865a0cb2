// internal/app/scheduling/swap.go
package scheduling

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/dalemusser/guardduty/internal/app/system/secretcode"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.uber.org/zap"
)

// SwapResult describes a completed swap from the acting user's side.
type SwapResult struct {
	Peer     models.User `json:"peer"`
	Given    []string    `json:"given"`    // days that now belong to Peer
	Received []string    `json:"received"` // days that now belong to the actor
}

// Swap exchanges all of the acting user's reservations with all of the
// reservations of the user holding code, then issues both users new codes.
//
// The code lookup, the ownership checks and the exchange happen under one
// write lock, so a code cannot be consumed twice and a failed attempt leaves
// the ledger and both codes untouched.
func (s *Service) Swap(ctx context.Context, actorID, code string) (SwapResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return SwapResult{}, ErrSecretCodeRequired
	}

	s.mu.Lock()
	actor, ok := s.dir.get(actorID)
	if !ok {
		s.mu.Unlock()
		return SwapResult{}, ErrUnknownActor
	}
	peer, ok := s.dir.findByCode(code, actor.ID)
	if !ok {
		s.mu.Unlock()
		return SwapResult{}, ErrUserNotFound
	}

	var mine, theirs []string
	for k, r := range s.ledger {
		switch r.UserID {
		case actor.ID:
			mine = append(mine, k)
		case peer.ID:
			theirs = append(theirs, k)
		}
	}
	if len(mine) == 0 {
		s.mu.Unlock()
		return SwapResult{}, ErrNoOwnReservation
	}
	if len(theirs) == 0 {
		s.mu.Unlock()
		return SwapResult{}, ErrPeerHasNoReservation
	}
	sort.Strings(mine)
	sort.Strings(theirs)

	for _, k := range mine {
		delete(s.ledger, k)
	}
	for _, k := range theirs {
		delete(s.ledger, k)
	}

	// Old codes are still in the directory here, so codeInUse rejects them.
	actor.SecretCode = secretcode.NewUnique(s.newCode, s.dir.codeInUse)
	peer.SecretCode = secretcode.NewUnique(s.newCode, func(c string) bool {
		return c == actor.SecretCode || s.dir.codeInUse(c)
	})
	s.dir.put(actor)
	s.dir.put(peer)

	peerSnap, actorSnap := snapshotOf(peer), snapshotOf(actor)
	for _, k := range mine {
		s.ledger[k] = models.Reservation{DateKey: k, UserID: peer.ID, User: peerSnap}
	}
	for _, k := range theirs {
		s.ledger[k] = models.Reservation{DateKey: k, UserID: actor.ID, User: actorSnap}
	}
	ledgerW, dirW := s.captureLedgerLocked(), s.captureDirectoryLocked()
	s.mu.Unlock()

	s.log.Info("reservations swapped",
		zap.String("user_id", actor.ID),
		zap.String("peer_id", peer.ID),
		zap.Int("given", len(mine)),
		zap.Int("received", len(theirs)))

	res := SwapResult{Peer: peer, Given: mine, Received: theirs}
	ledgerErr := s.persistLedger(ctx, ledgerW)
	dirErr := s.persistDirectory(ctx, dirW)
	return res, errors.Join(ledgerErr, dirErr)
}
