// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/guardduty/internal/app/scheduling"
)

// Notice is the user-facing body of every error response and of the warning
// attached to a successful response whose write to the record store failed.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`

	// Set for range errors so the caller can reset its selection.
	RestartFrom string   `json:"restart_from,omitempty"`
	Days        []string `json:"days,omitempty"`
}

var titles = map[string]string{
	"range_too_short":         "Date range too short",
	"range_inverted":          "Invalid date range",
	"date_in_past":            "Date has passed",
	"range_overlap":           "Dates already taken",
	"secret_code_required":    "Secret code required",
	"user_not_found":          "User not found",
	"no_own_reservation":      "No reservation found",
	"peer_has_no_reservation": "The other user has no reservation",
	"unknown_actor":           "Account not found",
	"not_reserved":            "Day not reserved",
	"not_admin":               "Access denied",
	"missing_identity":        "Sign-in failed",
	"persistence_failed":      "Saved locally only",
}

// lookupStatus maps lookup codes to HTTP statuses. Unlisted codes get 404.
var lookupStatus = map[string]int{
	"secret_code_required":    http.StatusUnprocessableEntity,
	"missing_identity":        http.StatusUnprocessableEntity,
	"no_own_reservation":      http.StatusConflict,
	"peer_has_no_reservation": http.StatusConflict,
	"not_admin":               http.StatusForbidden,
}

// NoticeFor classifies a scheduling error into a status and notice.
// Persistence failures map to 200: the operation itself took effect.
func NoticeFor(err error) (int, Notice) {
	code := scheduling.CodeOf(err)
	n := Notice{Title: titles[code], Description: err.Error(), Code: code}

	var inv *scheduling.InvertedRangeError
	if stderrors.As(err, &inv) {
		n.RestartFrom = inv.RestartFrom
	}
	var ov *scheduling.OverlapError
	if stderrors.As(err, &ov) {
		n.Days = ov.Days
	}

	switch scheduling.KindOf(err) {
	case scheduling.KindValidation:
		return http.StatusUnprocessableEntity, n
	case scheduling.KindLookup:
		if s, ok := lookupStatus[code]; ok {
			return s, n
		}
		return http.StatusNotFound, n
	case scheduling.KindPersistence:
		n.Description = "Your change was applied but could not be saved to the shared store. It may be lost if another update arrives first."
		return http.StatusOK, n
	}
	return http.StatusInternalServerError, Notice{
		Title:       "Something went wrong",
		Description: "An unexpected error occurred.",
		Code:        "internal",
	}
}

// PersistenceNotice returns the warning to attach to a successful response,
// or nil when err is not a persistence failure.
func PersistenceNotice(err error) *Notice {
	if err == nil || scheduling.KindOf(err) != scheduling.KindPersistence {
		return nil
	}
	_, n := NoticeFor(err)
	return &n
}
