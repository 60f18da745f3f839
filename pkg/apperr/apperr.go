// Package apperr enumerates the failure kinds surfaced by gated operations.
// Repos wrap these with context; handlers map them to HTTP status codes with
// Status and keep the human-readable message in the response body.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("must be logged in")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("not authorized")
	ErrSeriesLocked    = errors.New("series locked after first publish")
	ErrNoDraft         = errors.New("no draft found to publish")
	ErrSoldOut         = errors.New("chapter sold out")
	ErrGenerationLimit = errors.New("audio generation limit reached")
	ErrExternalService = errors.New("external service failure")
)

func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrSeriesLocked), errors.Is(err, ErrSoldOut):
		return http.StatusConflict
	case errors.Is(err, ErrNoDraft):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrGenerationLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Known reports whether err belongs to the taxonomy above. Unknown errors
// should not leak their text to clients.
func Known(err error) bool {
	return Status(err) != http.StatusInternalServerError
}
