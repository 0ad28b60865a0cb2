package bootstrap

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "guardduty",
		SessionKey:       "a-strong-production-session-key-0123456789",
		TimeZone:         "Asia/Jerusalem",
		AuditLogAuth:     "all",
		AuditLogSchedule: "log",
		DevLogin:         true,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", "dev", func(*AppConfig) {}, ""},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "http://nope" }, "MongoDB URI"},
		{"bad time zone", "dev", func(c *AppConfig) { c.TimeZone = "Mars/Olympus" }, "time_zone"},
		{"empty session key", "dev", func(c *AppConfig) { c.SessionKey = "" }, "session_key"},
		{"bad audit mode", "dev", func(c *AppConfig) { c.AuditLogSchedule = "sometimes" }, "audit_log_schedule"},
		{"dev key in prod", "prod", func(c *AppConfig) { c.SessionKey = devSessionKey; c.DevLogin = false }, "development default"},
		{"dev login in prod", "prod", func(*AppConfig) {}, "dev_login"},
		{"dev seed in prod", "prod", func(c *AppConfig) { c.DevLogin = false; c.DevSeed = true }, "dev_seed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want one mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" boss@unit.mil, ,ops@unit.mil,")
	want := []string{"boss@unit.mil", "ops@unit.mil"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if splitList("") != nil {
		t.Error("empty list should be nil")
	}
}

func TestAppConfig_Location(t *testing.T) {
	cfg := AppConfig{TimeZone: "Asia/Jerusalem"}
	if got := cfg.Location().String(); got != "Asia/Jerusalem" {
		t.Errorf("Location = %q", got)
	}
	if (AppConfig{}).Location() != time.Local {
		t.Error("blank time zone should be Local")
	}
}
