// internal/app/scheduling/service.go
package scheduling

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/guardduty/internal/app/system/secretcode"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.uber.org/zap"
)

// Persister receives the two write intents the record store accepts. Both
// replace the stored mapping wholesale.
type Persister interface {
	ReplaceLedger(ctx context.Context, reservations []models.Reservation) error
	ReplaceDirectory(ctx context.Context, users []models.User) error
}

// Snapshot is the full content of the record store at one instant.
//
// Generation, when non-zero, is the value of Service.Generation read before
// the store was loaded. Apply drops a stamped snapshot if the service has
// mutated since then, or had writes in flight at that moment.
type Snapshot struct {
	Reservations []models.Reservation
	Users        []models.User
	Generation   uint64
}

// DefaultRank is given to users created at first sign-in unless configured.
const DefaultRank = "Private"

// Service owns the reservation ledger and the user directory.
//
// Every mutation (Commit, Swap, SignIn, Apply) runs under the write lock as a
// single unit, so readers never see a half-applied range or swap. Record store
// writes happen after the lock is released and always send the current
// mapping as it stood when the mutation finished; a failed write is reported
// but the in-memory state is kept.
type Service struct {
	mu        sync.RWMutex
	ledger    map[string]models.Reservation
	dir       *directory
	ledgerSeq uint64
	dirSeq    uint64

	persistMu     sync.Mutex
	store         Persister
	ledgerWritten uint64
	dirWritten    uint64
	settled       atomic.Uint64 // finished persist attempts

	log         *zap.Logger
	now         func() time.Time
	loc         *time.Location
	newCode     func() string
	adminEmails map[string]bool
	defaultRank string
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that defines "today" and "this month".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithCodeGenerator replaces secretcode.New.
func WithCodeGenerator(gen func() string) Option {
	return func(s *Service) { s.newCode = gen }
}

// WithAdminEmails marks users signing in with one of these emails as admins.
func WithAdminEmails(emails ...string) Option {
	return func(s *Service) {
		for _, e := range emails {
			if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
				s.adminEmails[e] = true
			}
		}
	}
}

// WithDefaultRank sets the rank given to newly created users.
func WithDefaultRank(rank string) Option {
	return func(s *Service) {
		if rank = strings.TrimSpace(rank); rank != "" {
			s.defaultRank = rank
		}
	}
}

// New returns an empty Service. store may be nil, in which case nothing is
// persisted.
func New(store Persister, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		ledger:      make(map[string]models.Reservation),
		dir:         newDirectory(nil),
		store:       store,
		log:         logger,
		now:         time.Now,
		loc:         time.Local,
		newCode:     secretcode.New,
		adminEmails: make(map[string]bool),
		defaultRank: DefaultRank,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the time zone the service evaluates calendar days in.
func (s *Service) Location() *time.Location { return s.loc }

// Now is the service clock's current time in its location.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// Generation stamps a record store load. It counts the mutations whose
// writes have finished, plus one so that a stamp is never zero. Read it
// before loading and carry it in Snapshot.Generation.
func (s *Service) Generation() uint64 { return s.settled.Load() + 1 }

// Apply replaces the ledger and directory with snap. Last writer wins: no
// attempt is made to merge with the current in-memory view. A stamped
// snapshot that may predate a local mutation is dropped and Apply reports
// false; the write of that mutation triggers a fresh load.
func (s *Service) Apply(snap Snapshot) bool {
	ledger := make(map[string]models.Reservation, len(snap.Reservations))
	for _, r := range snap.Reservations {
		ledger[r.DateKey] = r
	}
	dir := newDirectory(snap.Users)

	s.mu.Lock()
	if mutations := s.ledgerSeq + s.dirSeq; snap.Generation != 0 && snap.Generation-1 != mutations {
		s.mu.Unlock()
		s.log.Debug("dropped stale record store snapshot",
			zap.Uint64("generation", snap.Generation),
			zap.Uint64("mutations", mutations))
		return false
	}
	s.ledger = ledger
	s.dir = dir
	s.mu.Unlock()

	s.log.Debug("applied record store snapshot",
		zap.Int("reservations", len(ledger)),
		zap.Int("users", dir.len()))
	return true
}

// Run applies every snapshot received on updates until ctx is done or the
// channel is closed.
func (s *Service) Run(ctx context.Context, updates <-chan Snapshot) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			s.Apply(snap)
		}
	}
}

// Snapshot copies the current ledger (chronological) and directory (join order).
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Reservations: s.reservationsLocked(),
		Users:        s.dir.list(),
	}
}

// Stats returns the number of reserved days and directory users.
func (s *Service) Stats() (reservations, users int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledger), s.dir.len()
}

func (s *Service) reservationsLocked() []models.Reservation {
	keys := sortedKeys(s.ledger)
	out := make([]models.Reservation, len(keys))
	for i, k := range keys {
		out[i] = s.ledger[k]
	}
	return out
}

// ledgerWrite and directoryWrite are mappings captured under the write lock
// together with a sequence number, so an older capture is never written over
// a newer one.
type ledgerWrite struct {
	seq          uint64
	reservations []models.Reservation
}

type directoryWrite struct {
	seq   uint64
	users []models.User
}

func (s *Service) captureLedgerLocked() ledgerWrite {
	s.ledgerSeq++
	return ledgerWrite{seq: s.ledgerSeq, reservations: s.reservationsLocked()}
}

func (s *Service) captureDirectoryLocked() directoryWrite {
	s.dirSeq++
	return directoryWrite{seq: s.dirSeq, users: s.dir.list()}
}

func (s *Service) persistLedger(ctx context.Context, w ledgerWrite) error {
	defer s.settled.Add(1)
	if s.store == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if w.seq <= s.ledgerWritten {
		return nil
	}

	if err := s.store.ReplaceLedger(ctx, w.reservations); err != nil {
		s.log.Error("replace ledger failed", zap.Error(err), zap.Int("reservations", len(w.reservations)))
		return &PersistenceError{Op: "ledger", Err: err}
	}
	s.ledgerWritten = w.seq
	return nil
}

func (s *Service) persistDirectory(ctx context.Context, w directoryWrite) error {
	defer s.settled.Add(1)
	if s.store == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if w.seq <= s.dirWritten {
		return nil
	}

	if err := s.store.ReplaceDirectory(ctx, w.users); err != nil {
		s.log.Error("replace directory failed", zap.Error(err), zap.Int("users", len(w.users)))
		return &PersistenceError{Op: "directory", Err: err}
	}
	s.dirWritten = w.seq
	return nil
}
