package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Domain error taxonomy. Every failure mode of the core is one of these,
// recovered at the handler boundary and surfaced as a structured response.
var (
	// ErrValidation covers malformed or out-of-range input, rejected before
	// touching state.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is an unknown user/chat/target id.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied covers acting on another user's resource,
	// non-participant chat access and non-premium radius changes.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrQuotaExhausted is returned when the daily swipe allowance is spent.
	ErrQuotaExhausted = errors.New("swipe quota exhausted")

	// ErrCooldownActive is returned when a location update is attempted
	// inside the cooldown window.
	ErrCooldownActive = errors.New("location cooldown active")

	// ErrChatFull is returned when adding a participant would exceed the
	// two-person chat limit. The triggering relationship row still persists.
	ErrChatFull = errors.New("chat participant limit reached")

	// ErrAlreadyExists marks a uniqueness conflict (username, email).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNoLocation is returned when proposals are requested by a user who
	// never shared a position.
	ErrNoLocation = errors.New("no location set")
)

// HTTPStatus maps a domain error onto an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrQuotaExhausted), errors.Is(err, ErrCooldownActive):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrChatFull), errors.Is(err, ErrNoLocation), errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Write serializes err as a JSON error envelope with the mapped status.
// Internal errors are masked; callers should log the cause themselves.
func Write(w http.ResponseWriter, err error) {
	code := HTTPStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
