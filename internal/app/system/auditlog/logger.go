// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/guardduty/internal/app/store/audit"
	"github.com/dalemusser/guardduty/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config selects where each category goes:
// "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off".
type Config struct {
	Auth     string
	Schedule string
}

// Recorder persists audit events. *audit.Store implements it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to the record store and to zap.
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, which behaves like "log".
func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// NewNopLogger returns a Logger that records nothing.
func NewNopLogger() *Logger {
	return &Logger{zapLog: zap.NewNop(), config: Config{Auth: "off", Schedule: "off"}}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.PeerID != "" {
		fields = append(fields, zap.String("peer_id", event.PeerID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's setting. A nil Logger is a
// no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategorySchedule:
		setting = l.config.Schedule
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" || l.store == nil {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	e.IP = ratelimit.ClientIP(r)
	e.UserAgent = r.UserAgent()
	return e
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, method string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"auth_method": method},
	}))
}

// LoginFailed logs a sign-in that did not produce a session.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, method, reason string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		FailureReason: reason,
		Details:       map[string]string{"auth_method": method},
	}))
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		Success:   true,
	}))
}

// UserCreated logs a directory entry created at first sign-in.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, userID string, isAdmin bool) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserCreated,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"is_admin": strconv.FormatBool(isAdmin)},
	}))
}

// --- Schedule Events ---

// ReservationCommitted logs a committed range.
func (l *Logger) ReservationCommitted(ctx context.Context, r *http.Request, userID string, days []string) {
	e := audit.Event{
		Category:  audit.CategorySchedule,
		EventType: audit.EventReservationCommitted,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"days": strconv.Itoa(len(days))},
	}
	if len(days) > 0 {
		e.Details["from"] = days[0]
		e.Details["to"] = days[len(days)-1]
	}
	l.Log(ctx, fromRequest(r, e))
}

// SwapCompleted logs a completed swap from the actor's side.
func (l *Logger) SwapCompleted(ctx context.Context, r *http.Request, userID, peerID string, given, received []string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySchedule,
		EventType: audit.EventSwapCompleted,
		UserID:    userID,
		PeerID:    peerID,
		Success:   true,
		Details: map[string]string{
			"given":    strings.Join(given, ","),
			"received": strings.Join(received, ","),
		},
	}))
}

// SwapFailed logs a refused swap attempt. The submitted code is not recorded.
func (l *Logger) SwapFailed(ctx context.Context, r *http.Request, userID, reason string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategorySchedule,
		EventType:     audit.EventSwapFailed,
		UserID:        userID,
		FailureReason: reason,
	}))
}

// ExportDownloaded logs a CSV export.
func (l *Logger) ExportDownloaded(ctx context.Context, r *http.Request, userID, start, end string, rows int) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySchedule,
		EventType: audit.EventExportDownloaded,
		UserID:    userID,
		Success:   true,
		Details: map[string]string{
			"start": start,
			"end":   end,
			"rows":  strconv.Itoa(rows),
		},
	}))
}

// ReportViewed logs an admin opening the under-assignment report.
func (l *Logger) ReportViewed(ctx context.Context, r *http.Request, userID string, listed int) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategorySchedule,
		EventType: audit.EventReportViewed,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"listed": strconv.Itoa(listed)},
	}))
}
