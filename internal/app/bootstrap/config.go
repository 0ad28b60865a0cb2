// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for GuardDuty.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: GUARDDUTY_MONGO_URI, GUARDDUTY_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "guardduty", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},
	{Name: "redis_url", Default: "", Desc: "Redis URL for change announcements (blank disables)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "guardduty-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session lifetime (e.g., 24h, 720h)"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL, used for the OAuth callback"},
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "dev_login", Default: false, Desc: "Enable the development sign-in endpoint (never in prod)"},
	{Name: "dev_seed", Default: false, Desc: "Seed demo users and reservations into an empty store (needs dev_login)"},
	{Name: "admin_emails", Default: "", Desc: "Comma-separated emails that become admins on first sign-in"},
	{Name: "login_rate_per_minute", Default: 10, Desc: "Sign-in attempts allowed per client IP per minute"},

	{Name: "default_rank", Default: scheduling.DefaultRank, Desc: "Rank given to users created at first sign-in"},
	{Name: "time_zone", Default: "Local", Desc: "IANA time zone calendar days are evaluated in"},
	{Name: "sync_poll_interval", Default: "30s", Desc: "Reload period when no change source is available (0 disables)"},
	{Name: "swap_rate_per_minute", Default: 5, Desc: "Swap attempts allowed per user per minute"},

	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_schedule", Default: "all", Desc: "Schedule event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "timeout_ping", Default: "2s", Desc: "Health ping timeout"},
	{Name: "timeout_short", Default: "5s", Desc: "Single-document operation timeout"},
	{Name: "timeout_medium", Default: "10s", Desc: "Snapshot load timeout"},
	{Name: "timeout_long", Default: "30s", Desc: "Wholesale write timeout"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// GUARDDUTY_* environment variables and flags, with flags winning.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GUARDDUTY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		RedisURL:         appValues.String("redis_url"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 720*time.Hour),

		BaseURL:            strings.TrimRight(appValues.String("base_url"), "/"),
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		DevLogin:           appValues.Bool("dev_login"),
		DevSeed:            appValues.Bool("dev_seed"),
		AdminEmails:        splitList(appValues.String("admin_emails")),
		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),

		DefaultRank:       appValues.String("default_rank"),
		TimeZone:          appValues.String("time_zone"),
		SyncPollInterval:  appValues.Duration("sync_poll_interval", 30*time.Second),
		SwapRatePerMinute: appValues.Int("swap_rate_per_minute"),

		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogSchedule: appValues.String("audit_log_schedule"),

		TimeoutPing:   appValues.Duration("timeout_ping", 0),
		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var auditModes = map[string]bool{"all": true, "db": true, "log": true, "off": true}

// ValidateConfig rejects configurations that cannot work before anything
// connects: a malformed Mongo URI, an unknown time zone, a missing or
// development session key in production, dev sign-in in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.TimeZone != "" {
		if _, err := time.LoadLocation(appCfg.TimeZone); err != nil {
			return fmt.Errorf("invalid time_zone %q: %w", appCfg.TimeZone, err)
		}
	}
	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key must be set")
	}
	for name, mode := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_schedule": appCfg.AuditLogSchedule} {
		if !auditModes[mode] {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", name, mode)
		}
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.SessionKey == devSessionKey {
			return fmt.Errorf("session_key must be changed from the development default in prod")
		}
		if appCfg.DevLogin {
			return fmt.Errorf("dev_login cannot be enabled in prod")
		}
		if appCfg.DevSeed {
			return fmt.Errorf("dev_seed cannot be enabled in prod")
		}
	}
	if !appCfg.GoogleEnabled() && !appCfg.DevLogin {
		logger.Warn("no sign-in method configured; set google_client_id/google_client_secret or dev_login")
	}
	return nil
}
