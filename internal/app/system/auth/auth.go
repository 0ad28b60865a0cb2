// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey  = "is_authenticated"
	userIDKey  = "user_id"
	userName   = "user_name"
	userEmail  = "user_email"
	userAdmin  = "user_is_admin"
	authMethod = "auth_method"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current user                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what the session carries and what handlers read back from
// the request context.
type SessionUser struct {
	ID      string
	Name    string
	Email   string
	IsAdmin bool
}

// UserFetcher returns the current directory entry for a signed-in user id, or
// nil when the user is no longer known. LoadSessionUser consults it on every
// request so profile and admin changes apply without signing out.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the signed-in user and whether there is one.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context, bypassing the session.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds the cookie store.
//
// With secure=true cookies are Secure and SameSite=None, which production
// behind HTTPS needs for the OAuth round trip. Local development over plain
// http uses secure=false and SameSite=Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "guardduty-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Store exposes the cookie store (logout copies its options).
func (m *SessionManager) Store() *sessions.CookieStore { return m.store }

// Name is the session cookie name.
func (m *SessionManager) Name() string { return m.name }

// SetUserFetcher makes LoadSessionUser refresh the user on every request.
func (m *SessionManager) SetUserFetcher(f UserFetcher) { m.fetcher = f }

// GetSession returns the request's session. On a decode error a fresh
// session is returned along with the error, so callers can log and go on.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, m.name)
}

// SignIn records u as authenticated in sess. The caller saves the session.
func SignIn(sess *sessions.Session, u SessionUser, method string) {
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[userAdmin] = u.IsAdmin
	sess.Values[authMethod] = method
}

// Establish signs u in on a fresh or existing session and saves it. An
// unreadable cookie is replaced rather than treated as an error.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, u SessionUser, method string) error {
	sess, err := m.GetSession(r)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.log.Warn("session cookie invalid, using fresh session",
				zap.Error(err),
				zap.String("user_id", u.ID))
		} else {
			m.log.Error("session store error during login, using fresh session",
				zap.Error(err),
				zap.String("user_id", u.ID))
		}
	}
	SignIn(sess, u, method)
	return sess.Save(r, w)
}

// Clear expires the session cookie using the store's cookie settings.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed during logout", zap.Error(err))
	}
	if opts := m.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser puts the signed-in user into the request context. With a
// fetcher configured, a user the directory no longer knows is treated as
// signed out.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.GetSession(r)
		if err != nil {
			m.log.Debug("session decode failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
			next.ServeHTTP(w, r)
			return
		}

		id := getString(sess, userIDKey)
		if m.fetcher != nil {
			if u := m.fetcher.FetchUser(r.Context(), id); u != nil {
				next.ServeHTTP(w, withUser(r, u))
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		admin, _ := sess.Values[userAdmin].(bool)
		next.ServeHTTP(w, withUser(r, &SessionUser{
			ID:      id,
			Name:    getString(sess, userName),
			Email:   getString(sess, userEmail),
			IsAdmin: admin,
		}))
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 with a JSON body.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		denyUnauthenticated(w, r)
	})
}

// RequireAdmin ensures the signed-in user is an admin. Browsers of non-admins
// are sent to /dashboard; API callers get 403.
func (m *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			denyUnauthenticated(w, r)
			return
		}
		if !u.IsAdmin {
			m.log.Info("admin route refused",
				zap.String("user_id", u.ID),
				zap.String("path", r.URL.Path))
			if wantsHTML(r) {
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
			writeAuthError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// helpers

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}
	writeAuthError(w, http.StatusUnauthorized, "unauthorized")
}

func writeAuthError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"code":%q}`+"\n", code)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
