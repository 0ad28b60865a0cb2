// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and CORS. Everything about
// the record store, sessions, sign-in and scheduling lives here.
type AppConfig struct {
	// MongoDB (the shared record store)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Redis change announcements. Blank disables the bus.
	RedisURL string

	// Session cookies
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration

	// Sign-in
	BaseURL            string // e.g. "https://duty.example.org", used for the OAuth callback
	GoogleClientID     string
	GoogleClientSecret string
	DevLogin           bool     // enables POST /login/dev; never in production
	DevSeed            bool     // seeds demo data into an empty store when DevLogin is on
	AdminEmails        []string // users created with these emails are admins
	LoginRatePerMinute int

	// Scheduling
	DefaultRank       string
	TimeZone          string // IANA name; calendar days are evaluated here
	SyncPollInterval  time.Duration
	SwapRatePerMinute int

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth     string
	AuditLogSchedule string

	// Timeouts (zero keeps the default)
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

// Location resolves TimeZone. ValidateConfig has already rejected bad names.
func (c AppConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c AppConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
