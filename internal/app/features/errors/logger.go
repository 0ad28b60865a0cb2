// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure and writes the matching JSON notice.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs err at error level and writes a 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	httpjson.Write(w, http.StatusInternalServerError, Notice{
		Title:       "Something went wrong",
		Description: userMsg,
		Code:        "internal",
	})
}

// LogBadRequest logs err at warn level and writes a 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Warn(msg, zap.Error(err), zap.String("path", r.URL.Path))
	RenderBadRequest(w, r, userMsg)
}

// LogScheduling writes the notice for a scheduling error. Validation and
// lookup failures are expected and logged at debug.
func (e *ErrorLogger) LogScheduling(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, n := NoticeFor(err)
	switch scheduling.KindOf(err) {
	case scheduling.KindValidation, scheduling.KindLookup:
		e.log.Debug(msg, zap.String("code", n.Code), zap.String("path", r.URL.Path))
	default:
		e.log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	}
	httpjson.Write(w, status, n)
}
