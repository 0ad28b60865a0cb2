// internal/app/scheduling/identity.go
package scheduling

import (
	"context"
	"strings"

	"github.com/dalemusser/guardduty/internal/app/system/htmlsanitize"
	"github.com/dalemusser/guardduty/internal/app/system/secretcode"
	"github.com/dalemusser/guardduty/internal/domain/models"
	"go.uber.org/zap"
)

// Identity is what the identity provider knows about a signed-in person.
// Empty optional fields mean the provider did not supply them.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
}

// IdentityEvent is one update from the identity provider. While Settling is
// true the provider has not decided yet, and a nil Current means nothing.
type IdentityEvent struct {
	Current  *Identity
	Settling bool
}

// Observe folds an identity event into the signed-in user. prev is the user
// signed in before the event.
//
//   - settling: prev is kept, even when Current is nil
//   - no identity: signed out, nil is returned
//   - identity: the directory user for it, created on first sign-in
func (s *Service) Observe(ctx context.Context, prev *models.User, evt IdentityEvent) (*models.User, error) {
	if evt.Settling {
		return prev, nil
	}
	if evt.Current == nil {
		return nil, nil
	}
	u, err := s.SignIn(ctx, *evt.Current)
	if err != nil && KindOf(err) != KindPersistence {
		return prev, err
	}
	return &u, err
}

// SignIn returns the directory user for id, creating one on a directory miss.
//
// New users take their first and last name from the first two words of the
// display name (defaulting to "New" and "User"), the default rank, a fresh
// secret code, and admin rights when their email is on the admin list. A
// *PersistenceError after creation still returns the new user.
func (s *Service) SignIn(ctx context.Context, id Identity) (models.User, error) {
	if strings.TrimSpace(id.ID) == "" {
		return models.User{}, ErrMissingIdentity
	}

	s.mu.Lock()
	if u, ok := s.dir.get(id.ID); ok {
		s.mu.Unlock()
		return u, nil
	}

	name, lastName := "New", "User"
	words := strings.Fields(htmlsanitize.PlainText(id.DisplayName))
	if len(words) > 0 {
		name = words[0]
	}
	if len(words) > 1 {
		lastName = words[1]
	}

	u := models.User{
		ID:         id.ID,
		Name:       name,
		LastName:   lastName,
		Rank:       s.defaultRank,
		SecretCode: secretcode.NewUnique(s.newCode, s.dir.codeInUse),
		CreatedAt:  s.now().UTC(),
	}
	if email := strings.TrimSpace(id.Email); email != "" {
		u.Email = &email
		u.IsAdmin = s.adminEmails[strings.ToLower(email)]
	}
	if photo := strings.TrimSpace(id.PhotoURL); photo != "" {
		u.PhotoURL = &photo
	}
	s.dir.put(u)
	write := s.captureDirectoryLocked()
	s.mu.Unlock()

	s.log.Info("user added to directory",
		zap.String("user_id", u.ID),
		zap.Bool("is_admin", u.IsAdmin))

	if err := s.persistDirectory(ctx, write); err != nil {
		return u, err
	}
	return u, nil
}
