// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/guardduty/internal/app/system/httpjson"
)

// RenderUnauthorized writes a 401 "sign in required" notice.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusUnauthorized, Notice{
		Title:       "Sign in required",
		Description: "Please sign in to continue.",
		Code:        "unauthorized",
	})
}

// RenderForbidden writes a 403 notice with msg.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg string) {
	httpjson.Write(w, http.StatusForbidden, Notice{Title: "Access denied", Description: msg, Code: "forbidden"})
}

// RenderNotFound writes a 404 notice with msg.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg string) {
	httpjson.Write(w, http.StatusNotFound, Notice{Title: "Not found", Description: msg, Code: "not_found"})
}

// RenderBadRequest writes a 400 notice with msg.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	httpjson.Write(w, http.StatusBadRequest, Notice{Title: "Bad request", Description: msg, Code: "bad_request"})
}

// RenderTooManyRequests writes a 429 notice.
func RenderTooManyRequests(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusTooManyRequests, Notice{
		Title:       "Too many attempts",
		Description: "Please wait a minute before trying again.",
		Code:        "rate_limited",
	})
}
