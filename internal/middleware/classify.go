package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/farigab/bragctl/internal/domain"
)

var statusMessages = map[int]string{
	0:                              "Network error - please check your connection",
	http.StatusBadRequest:          "Invalid request",
	http.StatusUnauthorized:        "Authentication required",
	http.StatusForbidden:           "Access forbidden",
	http.StatusNotFound:            "Resource not found",
	http.StatusConflict:            "Conflict - resource already exists",
	http.StatusUnprocessableEntity: "Validation error",
	http.StatusTooManyRequests:     "Too many requests - please try again later",
	http.StatusInternalServerError: "Internal server error",
	http.StatusBadGateway:          "Bad gateway",
	http.StatusServiceUnavailable:  "Service temporarily unavailable",
	http.StatusGatewayTimeout:      "Gateway timeout",
}

// Classify normalises an outbound-request failure. It returns nil when err
// carries no HTTPError (for example a cancelled context).
func Classify(err error) *domain.ClassifiedFailure {
	return classifyAt(err, time.Now())
}

func classifyAt(err error, now time.Time) *domain.ClassifiedFailure {
	var cf *domain.ClassifiedFailure
	if errors.As(err, &cf) {
		return cf
	}
	var herr *domain.HTTPError
	if !errors.As(err, &herr) {
		return nil
	}
	return &domain.ClassifiedFailure{
		Method:    herr.Method,
		URL:       herr.URL,
		Status:    herr.Status,
		Class:     domain.ClassOf(herr.Status),
		Message:   failureMessage(herr),
		Timestamp: now,
		Cause:     herr,
	}
}

// failureMessage prefers the server's message, then the validation mapping
// for 422s, then the static table, then a generic line. Never empty.
func failureMessage(herr *domain.HTTPError) string {
	if herr.Payload.Message != "" {
		return herr.Payload.Message
	}
	if herr.Status == http.StatusUnprocessableEntity {
		if msg := ValidationMessage(herr); msg != "" {
			return msg
		}
	}
	if msg, ok := statusMessages[herr.Status]; ok {
		return msg
	}
	reason := herr.Reason
	if reason == "" {
		reason = "Unknown error"
	}
	return fmt.Sprintf("Error %d: %s", herr.Status, reason)
}

// ValidationMessage joins the payload's field -> messages mapping, or returns
// "" when the payload has none.
func ValidationMessage(herr *domain.HTTPError) string {
	if herr == nil || len(herr.Payload.Errors) == 0 {
		return ""
	}
	return herr.Payload.Errors.Message()
}
